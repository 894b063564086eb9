// Package upgrade 负责数据库结构升级
package upgrade

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dontknow492/Notes/internal/model"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, db *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
func NewMigrationManager(db *gorm.DB, logger *zap.Logger) *MigrationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationManager{
		db:     db,
		logger: logger,
		migrations: []Migration{
			// 在这里注册所有的升级脚本
			&DanglingLinkMigrate{},
			&NoteTagPairMigrate{},
		},
	}
}

// Register 追加升级脚本
func (m *MigrationManager) Register(ms ...Migration) {
	m.migrations = append(m.migrations, ms...)
}

// Run creates the tables, then applies every registered migration not yet
// recorded in schema_version, in semver order. Each migration and its record
// commit together.
func (m *MigrationManager) Run(ctx context.Context) error {
	m.logger.Info("Migration started")

	if err := model.AutoMigrate(m.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}

	pending := slices.Clone(m.migrations)
	slices.SortStableFunc(pending, func(a, b Migration) int {
		return semver.Compare(canonical(a.Version()), canonical(b.Version()))
	})

	executed := 0
	for _, migration := range pending {
		version := migration.Version()
		if !semver.IsValid(canonical(version)) {
			return fmt.Errorf("migration %q has an invalid version", version)
		}
		if applied[version] {
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", version),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级
		if err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			record := &SchemaVersion{
				Version:     version,
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", version, err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", version))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}
	return nil
}

// appliedVersions 获取已应用的数据库版本
func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// canonical 补全 semver 需要的 "v" 前缀
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// Execute 执行升级(便捷方法)
func Execute(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, logger).Run(ctx)
}
