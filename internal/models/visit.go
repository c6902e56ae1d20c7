package models

// Visit 访问记录
// 说明：一次页面浏览对应一行。字段顺序即列顺序，建表与写入共用同一份
// 结构体定义，不允许漂移。除标识与时间戳外的属性均可为空（存 NULL）。
type Visit struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	VisitID   string `gorm:"column:visit_id;type:varchar(64);uniqueIndex;not null" json:"visit_id"`
	SessionID *string `gorm:"column:session_id;type:varchar(128);index" json:"session_id"` // 客户端会话标识
	Timestamp string  `gorm:"column:timestamp;type:varchar(32);index;not null" json:"timestamp"` // ISO-8601 UTC 字符串
	Page      *string `gorm:"column:page;type:varchar(512)" json:"page"`
	Referrer  *string `gorm:"column:referrer;type:varchar(1024)" json:"referrer"`

	// UTM 归因字段
	UtmSource   *string `gorm:"column:utm_source;type:varchar(255);index" json:"utm_source"`
	UtmMedium   *string `gorm:"column:utm_medium;type:varchar(255)" json:"utm_medium"`
	UtmCampaign *string `gorm:"column:utm_campaign;type:varchar(255)" json:"utm_campaign"`
	UtmContent  *string `gorm:"column:utm_content;type:varchar(255)" json:"utm_content"`
	UtmTerm     *string `gorm:"column:utm_term;type:varchar(255)" json:"utm_term"`

	// 地理位置字段
	IP        *string  `gorm:"column:ip;type:varchar(64)" json:"ip"`
	Country   *string  `gorm:"column:country;type:varchar(64);index" json:"country"`
	Region    *string  `gorm:"column:region;type:varchar(128)" json:"region"`
	City      *string  `gorm:"column:city;type:varchar(128)" json:"city"`
	ISP       *string  `gorm:"column:isp;type:varchar(255)" json:"isp"`
	Latitude  *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude"`
	Timezone  *string  `gorm:"column:timezone;type:varchar(64)" json:"timezone"`

	// UA 解析字段
	UserAgent      *string `gorm:"column:user_agent;type:text" json:"user_agent"`
	Browser        *string `gorm:"column:browser;type:varchar(64)" json:"browser"`
	BrowserVersion *string `gorm:"column:browser_version;type:varchar(64)" json:"browser_version"`
	OS             *string `gorm:"column:os;type:varchar(64)" json:"os"`
	OSVersion      *string `gorm:"column:os_version;type:varchar(64)" json:"os_version"`
	Device         *string `gorm:"column:device;type:varchar(32)" json:"device"`

	// 客户端环境字段
	ScreenWidth    *int    `gorm:"column:screen_width" json:"screen_width"`
	ScreenHeight   *int    `gorm:"column:screen_height" json:"screen_height"`
	Language       *string `gorm:"column:language;type:varchar(32)" json:"language"`
	ClientTimezone *string `gorm:"column:client_timezone;type:varchar(64)" json:"client_timezone"`
}

// TableName 指定表名
func (Visit) TableName() string {
	return "visits"
}
