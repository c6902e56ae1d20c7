package geoip

import (
	"errors"
	"net/netip"
	"sync"

	"github.com/oschwald/maxminddb-golang/v2"
)

// Location IP 定位结果
type Location struct {
	Country   string
	Region    string
	City      string
	Timezone  string
	Latitude  float64
	Longitude float64
}

// Locator 基于 mmdb 的 IP 定位器
// 说明：读写锁保护 reader，查询可并发。
type Locator struct {
	mu sync.RWMutex
	db *maxminddb.Reader
}

// NewLocator 打开 mmdb 数据库
func NewLocator(path string) (*Locator, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Locator{db: db}, nil
}

// Close 关闭数据库
func (l *Locator) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}

type cityRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
}

// Lookup 查询 IP 的地理位置
func (l *Locator) Lookup(ip string) (*Location, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("geoip locator not initialized")
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, err
	}
	addr = addr.Unmap()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var record cityRecord
	if err := l.db.Lookup(addr).Decode(&record); err != nil {
		return nil, err
	}

	location := &Location{
		Country:   record.Country.ISOCode,
		City:      record.City.Names["en"],
		Timezone:  record.Location.TimeZone,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		location.Region = record.Subdivisions[0].Names["en"]
	}
	return location, nil
}
