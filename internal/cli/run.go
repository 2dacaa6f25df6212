package cli

import (
	"context"
	"fmt"
)

// runDaemon запускает движок и планировщик до отмены ctx
func (c *Cli) runDaemon(ctx context.Context) error {
	unsubscribe := c.engine.Subscribe(c.printEvent)
	defer unsubscribe()

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	// ошибки доставки уже опубликованы событиями, очередь повторит их сама
	if err := c.engine.SetOnline(ctx, true); err != nil {
		c.io.Printf("Warning: failed to go online: %v\n", err)
	}

	st := c.engine.Status()
	c.io.Printf("ClipSync running: device %s, provider %s. Press Ctrl+C to stop.\n", st.DeviceID, st.Provider)

	<-ctx.Done()

	c.io.Println("Stopping...")
	return c.stop()
}
