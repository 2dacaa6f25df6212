package models

// DeviceInfo описывает устройство-участника синхронизации.
// Создается при первом контакте, обновляется при каждом входящем пакете
// и никогда не удаляется автоматически.
type DeviceInfo struct {
	ID              string `json:"id"`               // ID идентификатор устройства
	Platform        string `json:"platform"`         // Platform desktop, mobile, library, ...
	ProtocolVersion string `json:"protocol_version"` // ProtocolVersion версия протокола синхронизации
	LastSeen        int64  `json:"last_seen"`        // LastSeen timestamp последнего полученного элемента (unix ms)
	LastVersion     int    `json:"last_version"`     // LastVersion максимальная Version среди полученных элементов
	PriorityRank    int    `json:"priority_rank"`    // PriorityRank ранг для стратегии device_priority
	SyncEnabled     bool   `json:"sync_enabled"`     // SyncEnabled принимаются ли изменения от устройства
}

// Clone returns a copy of the device record.
func (d *DeviceInfo) Clone() *DeviceInfo {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
