package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clipsync/pkg/api"
)

func TestValidateDeviceID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		errMsg  string
		wantErr bool
	}{
		{name: "uuid", id: "0b6f3f2e-8d0c-4f5a-9d37-7b1f0f6b2a11"},
		{name: "hostname style", id: "laptop.home:1"},
		{name: "empty", id: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "too long", id: strings.Repeat("a", MaxIDLen+1), wantErr: true, errMsg: "must not exceed"},
		{name: "space", id: "my device", wantErr: true, errMsg: "can only contain"},
		{name: "slash", id: "a/b", wantErr: true, errMsg: "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeviceID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateItem(t *testing.T) {
	valid := func() *api.SyncItem {
		return &api.SyncItem{
			ID:        "item-1",
			Type:      "clipboard",
			Action:    "create",
			DeviceID:  "device-a",
			Checksum:  strings.Repeat("ab", 32),
			Payload:   []byte(`{"text":"hi"}`),
			Timestamp: 1000,
			Version:   1,
		}
	}

	tests := []struct {
		mutate  func(*api.SyncItem)
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "valid", mutate: func(*api.SyncItem) {}},
		{name: "delete without payload", mutate: func(i *api.SyncItem) { i.Action = "delete"; i.Payload = nil }},
		{name: "bad id", mutate: func(i *api.SyncItem) { i.ID = "" }, wantErr: true, errMsg: "item id"},
		{name: "bad device", mutate: func(i *api.SyncItem) { i.DeviceID = "a b" }, wantErr: true, errMsg: "device id"},
		{name: "unknown type", mutate: func(i *api.SyncItem) { i.Type = "photo" }, wantErr: true, errMsg: "unknown item type"},
		{name: "unknown action", mutate: func(i *api.SyncItem) { i.Action = "move" }, wantErr: true, errMsg: "unknown action"},
		{name: "bad checksum", mutate: func(i *api.SyncItem) { i.Checksum = "xyz" }, wantErr: true, errMsg: "checksum"},
		{name: "zero timestamp", mutate: func(i *api.SyncItem) { i.Timestamp = 0 }, wantErr: true, errMsg: "timestamp"},
		{name: "zero version", mutate: func(i *api.SyncItem) { i.Version = 0 }, wantErr: true, errMsg: "version"},
		{name: "payload too large", mutate: func(i *api.SyncItem) { i.Payload = make([]byte, MaxPayloadSize+1) }, wantErr: true, errMsg: "payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			err := ValidateItem(item)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}

	require.Error(t, ValidateItem(nil))
}
