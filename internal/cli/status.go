package cli

import (
	"strconv"
)

func (c *Cli) runStatus() error {
	st := c.engine.Status()

	c.io.Println("=== ClipSync Status ===")
	c.io.Printf("Device:        %s\n", st.DeviceID)
	c.io.Printf("Provider:      %s\n", st.Provider)
	c.io.Printf("Last sync:     %s\n", formatTime(st.LastSyncAt))
	c.io.Printf("Pull cursor:   %d\n", st.PullCursor)
	c.io.Printf("Pending items: %d\n", st.Pending)
	c.io.Printf("Conflicts:     %d\n", st.Conflicts)
	c.io.Printf("Known devices: %d\n", st.Devices)

	if st.Conflicts > 0 {
		c.io.Println()
		c.io.Println("Run 'clipsync conflicts' to review unresolved conflicts.")
	}
	if st.Pending > 0 {
		c.io.Println("Run 'clipsync sync' to deliver " + strconv.Itoa(st.Pending) + " pending item(s).")
	}
	return nil
}

func (c *Cli) runDevices() error {
	list := c.engine.Devices()
	if len(list) == 0 {
		c.io.Println("No devices seen yet.")
		return nil
	}

	c.io.Printf("%-38s %-10s %-9s %-8s %s\n", "DEVICE", "PLATFORM", "PROTOCOL", "ENABLED", "LAST SEEN")
	for _, d := range list {
		c.io.Printf("%-38s %-10s %-9s %-8t %s\n", d.ID, d.Platform, d.ProtocolVersion, d.SyncEnabled, formatTime(d.LastSeen))
	}
	return nil
}
