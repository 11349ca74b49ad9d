package notify

import (
	"context"
	"fmt"

	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// ConsoleNotifier prints alert events to stdout. Used for local runs
// and as the default when no webhook is configured.
type ConsoleNotifier struct {
	logger *zap.Logger
}

// NewConsoleNotifier creates a new console notifier
func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{
		logger: logger,
	}
}

// Notify prints one event.
func (n *ConsoleNotifier) Notify(ctx context.Context, event core.Event) error {
	switch ev := event.(type) {
	case core.MissingAlert:
		fmt.Printf("\n=== New Missing Assignments (%s) ===\n", ev.Student)
		for _, group := range ev.Courses {
			fmt.Printf("%s:\n", group.Course)
			for _, a := range group.Assignments {
				fmt.Printf("  - %s (%s)\n", a.Name, a.Date)
			}
		}
		if ev.StillOutstanding > 0 {
			fmt.Printf("%d other assignment(s) still outstanding\n", ev.StillOutstanding)
		}
	case core.ResolvedAlert:
		fmt.Printf("\n=== Assignments Completed (%s) ===\n", ev.Student)
		for _, group := range ev.Courses {
			for _, a := range group.Assignments {
				fmt.Printf("  - %s (%s, %s)\n", a.Name, group.Course, a.Date)
			}
		}
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind())
	}
	return nil
}
