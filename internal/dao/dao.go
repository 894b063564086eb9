// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dontknow492/Notes/internal/model"
	"github.com/dontknow492/Notes/pkg/fileurl"
	"github.com/dontknow492/Notes/pkg/notify"
	"github.com/dontknow492/Notes/pkg/util"
	"github.com/dontknow492/Notes/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const (
	TypeSQLite   = "sqlite"
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type     string
	Path     string
	UserName string
	Password string
	Host     string
	Port     int
	Name     string
	Charset  string
	// Replicas read-only DSNs registered with dbresolver (mysql/postgres)
	Replicas []string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	// BusyTimeout SQLite busy_timeout in milliseconds
	BusyTimeout int
	Tracing     bool
	RunMode     string
}

// Dao owns the database handle, the per-note write lanes and the change hub.
// It is created once per process and passed to every repository.
type Dao struct {
	db         *gorm.DB
	config     *DatabaseConfig
	logger     *zap.Logger
	writeQueue *writequeue.Manager
	changes    *notify.Hub[Change]
}

// Option configures a Dao
type Option func(*Dao)

func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) { d.config = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) { d.logger = l }
}

func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) { d.writeQueue = m }
}

func WithChangeHub(h *notify.Hub[Change]) Option {
	return func(d *Dao) { d.changes = h }
}

// New wraps db. Missing collaborators get private defaults so tests can build
// a Dao from a bare *gorm.DB.
func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{db: db}
	for _, opt := range opts {
		opt(d)
	}
	if d.config == nil {
		d.config = &DatabaseConfig{Type: TypeSQLite}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.writeQueue == nil {
		d.writeQueue = writequeue.New(nil, d.logger)
	}
	if d.changes == nil {
		d.changes = notify.NewHub[Change]()
	}
	return d
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// Changes is the hub every committed write is published on.
func (d *Dao) Changes() *notify.Hub[Change] {
	return d.changes
}

func (d *Dao) IsSQLite() bool {
	return d.config.Type == "" || d.config.Type == TypeSQLite
}

// ExecuteWrite runs fn in one transaction on the given write lane. Changes
// recorded on the ChangeSet are published only after commit; a rolled back
// transaction publishes nothing. Errors come back classified, see classify.
// ExecuteWrite 在写通道上以单个事务执行 fn，提交成功后才发布变更
func (d *Dao) ExecuteWrite(ctx context.Context, op string, lane int64, fn func(tx *gorm.DB, cs *ChangeSet) error) error {
	var cs ChangeSet
	err := d.writeQueue.Execute(ctx, lane, func(ctx context.Context) error {
		cs = ChangeSet{}
		return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx, &cs)
		})
	})
	if err != nil {
		return classify(op, err)
	}
	for _, c := range cs.changes {
		d.changes.Publish(c)
	}
	return nil
}

// Optimize refreshes planner statistics.
func (d *Dao) Optimize(ctx context.Context) error {
	var stmt string
	switch d.config.Type {
	case TypeMySQL:
		stmt = fmt.Sprintf("ANALYZE TABLE %s, %s, %s", model.TableNameNote, model.TableNameTag, model.TableNameNoteTag)
	case TypePostgres:
		stmt = "ANALYZE"
	default:
		stmt = "PRAGMA optimize"
	}
	if err := d.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return classify("Optimize", err)
	}
	return nil
}

// Close shuts down the write lanes and the change hub. The database handle
// belongs to the caller.
func (d *Dao) Close(ctx context.Context) error {
	d.changes.Close()
	return d.writeQueue.Shutdown(ctx)
}

// NewDBEngine opens the database described by c.
func NewDBEngine(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := userDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	if c.Type == TypeMySQL || c.Type == TypePostgres {
		if len(c.Replicas) > 0 {
			replicas := make([]gorm.Dialector, 0, len(c.Replicas))
			for _, dsn := range c.Replicas {
				replicas = append(replicas, openDialector(c.Type, dsn))
			}
			if err := db.Use(dbresolver.Register(dbresolver.Config{
				Replicas: replicas,
				Policy:   dbresolver.RandomPolicy{},
			})); err != nil {
				return nil, fmt.Errorf("register replicas: %w", err)
			}
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	if c.Tracing {
		_ = db.Use(&gormTracing.OpentracingPlugin{})
	}

	if lg != nil {
		lg.Info("database opened", zap.String("type", c.Type), zap.Int("replicas", len(c.Replicas)))
	}

	return db, nil
}

// Migrate creates or alters the note tables.
func Migrate(db *gorm.DB) error {
	return model.AutoMigrate(db)
}

func userDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case TypeMySQL:
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		// clientFoundRows makes RowsAffected count matched rows, which the
		// repositories rely on to detect missing notes
		return openDialector(c.Type, fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=Local&clientFoundRows=true",
			c.UserName, c.Password, c.Host, portOr(c.Port, 3306), c.Name, charset)), nil
	case TypePostgres:
		return openDialector(c.Type, fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			c.Host, c.UserName, c.Password, c.Name, portOr(c.Port, 5432))), nil
	case TypeSQLite, "":
		if c.Path == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		if err := fileurl.CreatePath(c.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		return sqlite.Open(sqliteDSN(c.Path, c.BusyTimeout)), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.Type)
}

func openDialector(typ, dsn string) gorm.Dialector {
	if typ == TypeMySQL {
		return mysql.Open(dsn)
	}
	return postgres.Open(dsn)
}

// sqliteDSN enables foreign keys (cascades depend on it), WAL so readers never
// wait on the writer, and immediate transactions so a writer takes the lock
// at BEGIN and busy_timeout applies.
func sqliteDSN(path string, busyTimeout int) string {
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	params := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout),
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func portOr(p, def int) int {
	if p <= 0 {
		return def
	}
	return p
}
