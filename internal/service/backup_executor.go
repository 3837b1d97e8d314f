package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/db-backup-sync-service/internal/domain"
	"github.com/haierkeys/db-backup-sync-service/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CommandExecutor produces backup artifacts by invoking a configured
// external command. The SQL engine side stays outside this service; the
// command is whatever the operator wires (sqlcmd, a wrapper script).
//
// Placeholders in the command template:
//
//	{database}  the job's database name
//	{kind}      FULL, DIFF or LOG
//	{path}      the target artifact path, derived from the layout
type CommandExecutor struct {
	// Template full shell command, empty disables execution.
	Template string
	// BasePath root of the backup layout, used to derive {path}.
	BasePath string
	// Timeout per job run. Full backups can take hours.
	Timeout time.Duration
	Logger  *zap.Logger
}

func (e *CommandExecutor) Execute(ctx context.Context, job *domain.BackupJob) (string, float64, error) {
	if e.Template == "" {
		return "", 0, errors.New("no backup command configured")
	}

	now := time.Now()
	target := e.artifactPath(job, now)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", 0, errors.Wrap(err, "create backup dir")
	}

	cmdline := strings.NewReplacer(
		"{database}", job.Database,
		"{kind}", string(job.Kind),
		"{path}", target,
	).Replace(e.Template)

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Hour
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.Logger.Info("backup command start",
		zap.String(logger.FieldJob, job.Name),
		zap.String(logger.FieldPath, target))

	cmd := exec.CommandContext(runCtx, "sh", "-c", cmdline)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", 0, errors.Errorf("backup command timed out after %s", timeout)
		}
		return "", 0, errors.Wrapf(err, "backup command: %s", firstLine(string(out)))
	}

	stat, err := os.Stat(target)
	if err != nil {
		return "", 0, errors.Wrap(err, "backup command produced no artifact")
	}
	return target, float64(stat.Size()) / 1024.0 / 1024.0, nil
}

func (e *CommandExecutor) artifactPath(job *domain.BackupJob, now time.Time) string {
	name := fmt.Sprintf("%s_%s_%s_%s.bak",
		job.Database, job.Kind, now.Format("20060102"), now.Format("150405"))
	return filepath.Join(e.BasePath, string(job.Kind), now.Format("2006-01-02"), name)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
