package leads

import (
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

// BulkAction is an operation applied to every selected lead.
type BulkAction string

const (
	BulkDeactivate    BulkAction = "deactivate"
	BulkMarkContacted BulkAction = "mark_contacted"
)

// ParseBulkAction accepts any casing or separator style, e.g.
// "markContacted", "mark-contacted" or "Mark Contacted".
func ParseBulkAction(raw string) (BulkAction, error) {
	switch action := BulkAction(strcase.ToSnake(strings.TrimSpace(raw))); action {
	case BulkDeactivate, BulkMarkContacted:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBulkAction, raw)
	}
}

// Verb is the activity verb logged for each affected lead.
func (a BulkAction) Verb() string {
	return "lead." + string(a)
}

// Label is the button caption for the action.
func (a BulkAction) Label() string {
	switch a {
	case BulkMarkContacted:
		return "Mark as Contacted"
	default:
		return strcase.ToPascal(string(a))
	}
}

func (a BulkAction) notice(count int) Notice {
	var msg string
	switch a {
	case BulkMarkContacted:
		msg = fmt.Sprintf("Marked %d lead(s) as Contacted. Check the activity log for IDs.", count)
	default:
		msg = fmt.Sprintf("Deactivated %d lead(s). Check the activity log for IDs.", count)
	}
	return Notice{Level: NoticeSuccess, Message: msg}
}
