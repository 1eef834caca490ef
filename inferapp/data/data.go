package data

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison-roh/plant-disease-inference/inferapp/config"
	"github.com/harrison-roh/plant-disease-inference/inferapp/data/db"
	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
)

type store interface {
	Insert(ctx context.Context, item db.Item) error
	List(ctx context.Context, limit int) ([]db.Item, error)
	Destroy() error
}

// Manager 추론 기록과 업로드 이미지를 관리
type Manager struct {
	conn        store
	tableName   string
	samplesPath string
}

// Entry 기록할 추론 요청
type Entry struct {
	RequestID string
	Filename  string
	Image     []byte
	Record    inference.Record
	Degraded  bool
	Elapsed   time.Duration
}

// Record 추론 결과를 기록, samplesPath가 설정된 경우 이미지도 저장
func (dm *Manager) Record(ctx context.Context, e Entry) (db.Item, error) {
	item := db.Item{
		ID:           uuid.New().String(),
		RequestID:    e.RequestID,
		Filename:     e.Filename,
		FileFormat:   fileFormat(e.Filename),
		Bytes:        int64(len(e.Image)),
		Species:      e.Record.Species,
		Disease:      e.Record.Disease,
		Confidence:   e.Record.Confidence,
		Severity:     string(e.Record.Severity),
		QualityIndex: e.Record.QualityIndex,
		Degraded:     e.Degraded,
		ElapsedMs:    e.Elapsed.Milliseconds(),
		CreateAt:     time.Now(),
	}

	if dm.samplesPath != "" && len(e.Image) > 0 {
		if filePath, err := dm.saveSample(item, e.Image); err != nil {
			log.Printf("Fail to save sample(%s): %s", e.Filename, err)
		} else {
			item.FilePath = filePath
		}
	}

	if err := dm.conn.Insert(ctx, item); err != nil {
		if item.FilePath != "" {
			if err := os.Remove(item.FilePath); err != nil {
				log.Print(err)
			}
		}
		return item, err
	}

	return item, nil
}

// saveSample <samplesPath>/<species>/<disease>/<uuid8>-<filename> 으로 저장
func (dm *Manager) saveSample(item db.Item, image []byte) (string, error) {
	fileDir := filepath.Join(dm.samplesPath, dirName(item.Species), dirName(item.Disease))
	if err := os.MkdirAll(fileDir, os.ModePerm); err != nil {
		return "", err
	}

	name := filepath.Base(item.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "image"
	}
	filePath := filepath.Join(fileDir, fmt.Sprintf("%s-%s", item.ID[:8], name))

	if err := os.WriteFile(filePath, image, 0644); err != nil {
		return "", err
	}

	return filePath, nil
}

// Recent 최근 추론 기록 반환
func (dm *Manager) Recent(ctx context.Context, limit int) ([]db.Item, error) {
	return dm.conn.List(ctx, limit)
}

// Destroy Data manager 해제
func (dm *Manager) Destroy() {
	if err := dm.conn.Destroy(); err != nil {
		log.Printf("DB %s close failed: %s", dm.tableName, err)
	} else {
		log.Printf("DB %s successfully closed", dm.tableName)
	}
}

func fileFormat(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func dirName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, s)
}

// New 새로운 Data manager 생성
func New(ctx context.Context, cfg config.JournalConfig) (*Manager, error) {
	conn, err := db.New(ctx, db.Config{
		DriverName: cfg.Driver,
		ConnInfo:   cfg.DSN,
		TableName:  cfg.Table,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("DB %s successfully initialized", cfg.Table)

	dm := &Manager{
		conn:        conn,
		tableName:   cfg.Table,
		samplesPath: cfg.SamplesPath,
	}

	return dm, nil
}
