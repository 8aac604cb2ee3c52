package forms

import (
	"context"

	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the non-blocking message shown after a submission attempt.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
}

// Notifier receives submission notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// LogNotifier writes notices to the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	if n == nil || n.logg == nil {
		return
	}
	ctx = n.logg.WithFields(ctx, map[string]any{"notice_level": notice.Level, "notice_code": notice.Code})
	if notice.Level == NoticeError {
		n.logg.Warn(ctx, notice.Message)
		return
	}
	n.logg.Info(ctx, notice.Message)
}

func successNotice(noun string, edit bool) Notice {
	verb, title := "added", "Added"
	if edit {
		verb, title = "updated", "Updated"
	}
	return Notice{
		Level:   NoticeSuccess,
		Title:   capitalize(noun) + " " + title,
		Message: "The " + noun + " has been " + verb + " successfully!",
	}
}

func failureNotice(noun string, edit bool, err error) Notice {
	gerund := "adding"
	if edit {
		gerund = "updating"
	}
	notice := Notice{
		Level:   NoticeError,
		Title:   "Error",
		Message: "There was an error " + gerund + " the " + noun + "!",
	}
	if typed := pkgerrors.As(err); typed != nil {
		notice.Code = string(typed.Code())
		if typed.Code() == pkgerrors.CodeValidation {
			notice.Message = "Please fill in every required field."
		}
	}
	return notice
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
