package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
)

// CopyOptions параметры команды copy
type CopyOptions struct {
	Text     string
	Source   string
	Priority int
}

// runCopy ставит текст буфера обмена в очередь и сразу пытается отправить
func (c *Cli) runCopy(ctx context.Context, opts CopyOptions) error {
	text := opts.Text
	if text == "" {
		var err error
		text, err = c.io.ReadInput("Text: ")
		if err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}
	}
	if text == "" {
		return errors.New("text cannot be empty")
	}

	unsubscribe := c.engine.Subscribe(c.printEvent, events.KindError, events.KindItemSynced)
	defer unsubscribe()

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	err := c.copyOnline(ctx, text, opts)
	if stopErr := c.stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

func (c *Cli) copyOnline(ctx context.Context, text string, opts CopyOptions) error {
	if err := c.engine.SetOnline(ctx, true); err != nil {
		return fmt.Errorf("failed to go online: %w", err)
	}

	payload := models.ClipboardPayload{Text: text, Source: opts.Source}
	item, queued, err := c.engine.CreateItem(ctx, models.ItemTypeClipboard, models.ActionCreate, payload, opts.Priority)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	if !queued {
		c.io.Println("Item was filtered out and not queued.")
		return nil
	}

	if err := c.engine.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	c.io.Printf("Item %s queued, pending: %d\n", item.ID, c.engine.Status().Pending)
	return nil
}

// runSync выполняет один цикл отправки и получения изменений
func (c *Cli) runSync(ctx context.Context) error {
	unsubscribe := c.engine.Subscribe(c.printEvent)
	defer unsubscribe()

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	err := c.syncOnline(ctx)
	if stopErr := c.stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

func (c *Cli) syncOnline(ctx context.Context) error {
	if err := c.engine.SetOnline(ctx, true); err != nil {
		return fmt.Errorf("failed to go online: %w", err)
	}
	if err := c.engine.SyncNow(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	st := c.engine.Status()
	c.io.Printf("Sync finished: pending %d, conflicts %d\n", st.Pending, st.Conflicts)
	return nil
}
