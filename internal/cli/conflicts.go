package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/clipsync/internal/conflict"
	"github.com/iudanet/clipsync/internal/models"
)

func (c *Cli) runConflicts() error {
	list := c.engine.Conflicts()
	if len(list) == 0 {
		c.io.Println("No unresolved conflicts.")
		return nil
	}

	for _, cf := range list {
		c.io.Printf("Conflict %s (item %s, %s, detected %s)\n", cf.ID, cf.ItemID, cf.Strategy, formatTime(cf.DetectedAt))
		c.io.Printf("  local:  %s\n", describeItem(cf.Local))
		c.io.Printf("  remote: %s\n", describeItem(cf.Remote))
	}
	c.io.Println()
	c.io.Println("Resolve with: clipsync resolve <conflict-id> --keep local|remote")
	return nil
}

func (c *Cli) runResolve(ctx context.Context, conflictID, keep string) error {
	side := conflict.Side(keep)
	if side != conflict.SideLocal && side != conflict.SideRemote {
		return fmt.Errorf("--keep must be %q or %q, got %q", conflict.SideLocal, conflict.SideRemote, keep)
	}

	if err := c.engine.ResolveConflict(ctx, conflictID, side); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	c.io.Printf("Conflict %s resolved, kept %s version.\n", conflictID, side)
	return nil
}

// describeItem выводит краткое описание версии элемента
func describeItem(item *models.SyncItem) string {
	if item == nil {
		return "-"
	}
	text := models.SearchText(item.Payload)
	if len(text) > 40 {
		text = text[:37] + "..."
	}
	return fmt.Sprintf("device=%s at %s: %q", item.DeviceID, formatTime(item.Timestamp), text)
}
