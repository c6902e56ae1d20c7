package models

import (
	"database/sql"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TimestampLayout 访问/事件时间戳的存储布局
// 说明：零填充、UTC、固定毫秒位，保证字符串字典序与时间先后一致，
// 两个后端的窗口比较都依赖这一点。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp 按存储布局格式化时间戳
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Backend 存储后端类型
type Backend string

// 存储后端常量
const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// DB 全局数据库连接
var DB *gorm.DB

// DefaultStore 全局记录存储
var DefaultStore *RecordStore

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// RecordStore 访问/事件记录存储
// 说明：封装后端类型与惰性建表护栏。网络后端在首次使用时建表，
// 失败保持未就绪（下次调用重试），成功后不再重复执行。
type RecordStore struct {
	db      *gorm.DB
	backend Backend

	mu    sync.Mutex
	ready bool
}

// NewRecordStore 创建记录存储
func NewRecordStore(db *gorm.DB, backend Backend) *RecordStore {
	return &RecordStore{db: db, backend: backend}
}

// DB 返回底层连接
func (s *RecordStore) DB() *gorm.DB {
	return s.db
}

// Backend 返回后端类型
func (s *RecordStore) Backend() Backend {
	return s.backend
}

// EnsureSchema 确保访问/事件表存在
// 建表幂等（create-if-not-exists），并发安全；失败不锁死，
// 下一次调用会重新尝试。
func (s *RecordStore) EnsureSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.db.AutoMigrate(&Visit{}, &Event{}); err != nil {
		return err
	}
	s.ready = true
	return nil
}

// InitDB 初始化数据库连接
// 后端选择：url 非空走 Postgres，否则用 sqlitePath 的嵌入式库。
// 进程生命周期内只决定一次，不做运行期切换。
func InitDB(url, sqlitePath string, pool DBPoolConfig) error {
	backend := BackendSQLite
	var dialector gorm.Dialector
	if strings.TrimSpace(url) != "" {
		backend = BackendPostgres
		dialector = postgres.Open(ResolvePostgresDSN(url))
	} else {
		dialector = sqlite.Open(SQLiteDSN(sqlitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	applyDBPool(sqlDB, pool)

	DB = db
	DefaultStore = NewRecordStore(db, backend)

	// 嵌入式后端启动即建表；网络后端留给 EnsureSchema 首次使用时处理
	if backend == BackendSQLite {
		if err := DefaultStore.EnsureSchema(); err != nil {
			return err
		}
	}
	return nil
}

// MigrateSite 迁移站点管理表（资源目录与管理员账号）
func MigrateSite() error {
	return DB.AutoMigrate(
		&Asset{},
		&Admin{},
	)
}

// SQLiteDSN 为嵌入式库路径追加 WAL 与放宽的落盘参数
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
}

// ResolvePostgresDSN 按主机位置补全 sslmode
// 回环/内网主机禁用 SSL（容器本地组网的务实处理），
// 其余主机启用 require（不校验证书链）；显式 sslmode 不覆盖。
func ResolvePostgresDSN(raw string) string {
	if strings.Contains(raw, "sslmode=") {
		return raw
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		q := u.Query()
		q.Set("sslmode", sslModeForHost(u.Hostname()))
		u.RawQuery = q.Encode()
		return u.String()
	}
	// key=value 形式的 DSN
	host := ""
	for _, field := range strings.Fields(raw) {
		if strings.HasPrefix(field, "host=") {
			host = strings.TrimPrefix(field, "host=")
		}
	}
	return raw + " sslmode=" + sslModeForHost(host)
}

func sslModeForHost(host string) string {
	if isLocalNetworkHost(host) {
		return "disable"
	}
	return "require"
}

// isLocalNetworkHost 判断主机是否属于回环或内网
func isLocalNetworkHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return false
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}
