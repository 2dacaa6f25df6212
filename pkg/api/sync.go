package api

// Origin описывает устройство-источник элемента.
type Origin struct {
	DeviceID        string `json:"device_id"`
	Platform        string `json:"platform,omitempty"`
	ProtocolVersion string `json:"protocol_version"`
}

// SyncItem представляет элемент в том виде, в каком он передается провайдеру.
// Payload содержит JSON payload либо, при Encrypted, шифротекст AES-GCM.
type SyncItem struct {
	Origin    Origin `json:"origin"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	DeviceID  string `json:"device_id"`
	Checksum  string `json:"checksum"` // SHA-256 открытого payload
	Payload   []byte `json:"payload"`  // base64 в JSON
	Timestamp int64  `json:"timestamp"`
	Version   int    `json:"version"`
	Priority  int    `json:"priority"`
	Encrypted bool   `json:"encrypted"`
}

// ChangesResponse представляет ответ на запрос изменений после since
type ChangesResponse struct {
	Items  []SyncItem `json:"items"`  // Изменения по возрастанию timestamp
	Cursor int64      `json:"cursor"` // Максимальный timestamp в ответе (или since, если пусто)
}

// PutItemResponse представляет ответ на загрузку элемента
type PutItemResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version"` // Версия, сохраненная на сервере
	Applied bool   `json:"applied"` // false если на сервере уже есть более новая копия
}
