package models

// Event 用户行为事件
// 说明：一次被跟踪的用户动作对应一行（download、download_all、modal_open、
// pageview 等）。与 Visit 仅通过 session_id 软关联，不做外键约束，
// 关联列建索引供统计查询使用。
type Event struct {
	ID        uint    `gorm:"primarykey" json:"-"`
	EventID   string  `gorm:"column:event_id;type:varchar(64);uniqueIndex;not null" json:"event_id"`
	SessionID *string `gorm:"column:session_id;type:varchar(128);index" json:"session_id"`
	Timestamp string  `gorm:"column:timestamp;type:varchar(32);index;not null" json:"timestamp"`
	EventType *string `gorm:"column:event_type;type:varchar(64);index" json:"event_type"`

	// 资源字段：仅资源相关事件有值
	AssetID       *string `gorm:"column:asset_id;type:varchar(64);index" json:"asset_id"`
	AssetTitle    *string `gorm:"column:asset_title;type:varchar(255)" json:"asset_title"`
	AssetCategory *string `gorm:"column:asset_category;type:varchar(64)" json:"asset_category"`

	Page *string `gorm:"column:page;type:varchar(512)" json:"page"`

	// UTM 归因字段（Visit 归因字段的子集）
	UtmSource   *string `gorm:"column:utm_source;type:varchar(255)" json:"utm_source"`
	UtmCampaign *string `gorm:"column:utm_campaign;type:varchar(255)" json:"utm_campaign"`
	UtmTerm     *string `gorm:"column:utm_term;type:varchar(255)" json:"utm_term"`
}

// TableName 指定表名
func (Event) TableName() string {
	return "events"
}
