package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Payload is the typed body of a SyncItem. Each ItemType has exactly one
// variant; the set is closed to this package.
type Payload interface {
	Kind() ItemType
	clone() Payload
}

// Mergeable is implemented by map-shaped payloads that support field-level merge.
type Mergeable interface {
	Payload
	Fields() map[string]any
	withFields(fields map[string]any) Payload
}

// ClipboardPayload представляет содержимое буфера обмена.
type ClipboardPayload struct {
	Text        string `json:"text"`                   // Text текст из буфера обмена
	ContentType string `json:"content_type,omitempty"` // ContentType результат детектора (url, email, code, ...)
	Source      string `json:"source,omitempty"`       // Source приложение-источник
}

// SettingsPayload представляет набор пользовательских настроек.
type SettingsPayload struct {
	Values map[string]any `json:"values"`
}

// ConfigPayload представляет фрагмент конфигурации приложения.
type ConfigPayload struct {
	Values map[string]any `json:"values"`
}

// CachePayload представляет одну запись кеша обработки.
type CachePayload struct {
	Value      any     `json:"value"`
	Key        string  `json:"key"`
	TTLSeconds float64 `json:"ttl_seconds,omitempty"`
}

// RuleCondition is one condition of an automation rule.
type RuleCondition struct {
	Value         any    `json:"value"`
	Type          string `json:"type"`     // content_matches, content_contains, content_type, ...
	Operator      string `json:"operator"` // equals, contains, matches, greater_than, ...
	CaseSensitive bool   `json:"case_sensitive"`
}

// RuleAction is one action of an automation rule.
type RuleAction struct {
	Parameters   map[string]any `json:"parameters,omitempty"`
	Type         string         `json:"type"` // copy_to_clipboard, save_to_file, send_notification, ...
	DelaySeconds float64        `json:"delay_seconds,omitempty"`
	Enabled      bool           `json:"enabled"`
}

// AutomationPayload представляет правило автоматизации.
type AutomationPayload struct {
	RuleID          string          `json:"rule_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Conditions      []RuleCondition `json:"conditions"`
	Actions         []RuleAction    `json:"actions"`
	Priority        int             `json:"priority"`
	CooldownSeconds float64         `json:"cooldown_seconds,omitempty"`
	Enabled         bool            `json:"enabled"`
}

func (ClipboardPayload) Kind() ItemType  { return ItemTypeClipboard }
func (SettingsPayload) Kind() ItemType   { return ItemTypeSettings }
func (ConfigPayload) Kind() ItemType     { return ItemTypeConfig }
func (CachePayload) Kind() ItemType      { return ItemTypeCache }
func (AutomationPayload) Kind() ItemType { return ItemTypeAutomation }

func (p ClipboardPayload) clone() Payload { return p }

func (p SettingsPayload) clone() Payload {
	return SettingsPayload{Values: deepCopyMap(p.Values)}
}

func (p ConfigPayload) clone() Payload {
	return ConfigPayload{Values: deepCopyMap(p.Values)}
}

func (p CachePayload) clone() Payload {
	p.Value = deepCopyValue(p.Value)
	return p
}

func (p AutomationPayload) clone() Payload {
	conditions := make([]RuleCondition, len(p.Conditions))
	for i, c := range p.Conditions {
		c.Value = deepCopyValue(c.Value)
		conditions[i] = c
	}
	actions := make([]RuleAction, len(p.Actions))
	for i, a := range p.Actions {
		a.Parameters = deepCopyMap(a.Parameters)
		actions[i] = a
	}
	p.Conditions = conditions
	p.Actions = actions
	return p
}

// Fields returns the settings map.
func (p SettingsPayload) Fields() map[string]any { return p.Values }

func (p SettingsPayload) withFields(fields map[string]any) Payload {
	return SettingsPayload{Values: fields}
}

// Fields returns the configuration map.
func (p ConfigPayload) Fields() map[string]any { return p.Values }

func (p ConfigPayload) withFields(fields map[string]any) Payload {
	return ConfigPayload{Values: fields}
}

// EncodePayload serializes a payload to JSON. A nil payload encodes as null.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodePayload parses JSON into the variant owned by itemType.
// Empty input and JSON null decode to a nil payload.
func DecodePayload(itemType ItemType, data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var (
		payload Payload
		err     error
	)

	switch itemType {
	case ItemTypeClipboard:
		var p ClipboardPayload
		err = decodeStrict(trimmed, &p)
		payload = p
	case ItemTypeSettings:
		var p SettingsPayload
		err = decodeStrict(trimmed, &p)
		payload = p
	case ItemTypeConfig:
		var p ConfigPayload
		err = decodeStrict(trimmed, &p)
		payload = p
	case ItemTypeCache:
		var p CachePayload
		err = decodeStrict(trimmed, &p)
		payload = p
	case ItemTypeAutomation:
		var p AutomationPayload
		err = decodeStrict(trimmed, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", itemType, err)
	}
	return payload, nil
}

// MergePayloads shallow-merges remote fields under local ones: keys present
// in local keep the local value. Returns false when either side is not a
// map-shaped payload or the variants differ.
func MergePayloads(local, remote Payload) (Payload, bool) {
	l, ok := local.(Mergeable)
	if !ok {
		return nil, false
	}
	r, ok := remote.(Mergeable)
	if !ok || l.Kind() != r.Kind() {
		return nil, false
	}

	merged := deepCopyMap(r.Fields())
	if merged == nil {
		merged = make(map[string]any)
	}
	maps.Copy(merged, deepCopyMap(l.Fields()))

	return l.withFields(merged), true
}

// SearchText returns the text that include/exclude filters are matched against.
func SearchText(p Payload) string {
	if p == nil {
		return ""
	}
	if c, ok := p.(ClipboardPayload); ok {
		return c.Text
	}
	data, err := EncodePayload(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeStrict декодирует JSON, сохраняя числа как json.Number,
// чтобы повторная сериализация не меняла их представление.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return val
	}
}
