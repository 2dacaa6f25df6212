package api

// DeviceInfo представляет устройство, известное серверу
type DeviceInfo struct {
	ID              string `json:"id"`
	Platform        string `json:"platform,omitempty"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	LastSeen        int64  `json:"last_seen"`
	LastVersion     int    `json:"last_version"`
}

// DevicesResponse представляет список устройств
type DevicesResponse struct {
	Devices []DeviceInfo `json:"devices"`
}

// Beacon анонсирует устройство в локальной сети (UDP broadcast)
type Beacon struct {
	DeviceID        string `json:"device_id"`
	Platform        string `json:"platform,omitempty"`
	ProtocolVersion string `json:"protocol_version"`
	Port            int    `json:"port"` // HTTP порт пира
}
