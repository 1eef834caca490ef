package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
)

const (
	DriverMySQL = "mysql"
	DriverPgx   = "pgx"

	pingTimeout = 5 * time.Second
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config DBconn config
type Config struct {
	DriverName string
	ConnInfo   string

	TableName string
}

// DBconn db 연결정보
type DBconn struct {
	DriverName string
	TableName  string

	db *sql.DB
}

// Item 추론 기록 항목
type Item struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	Filename     string    `json:"filename"`
	FileFormat   string    `json:"format"`
	Bytes        int64     `json:"bytes"`
	Species      string    `json:"species"`
	Disease      string    `json:"disease"`
	Confidence   float64   `json:"confidence"`
	Severity     string    `json:"severity"`
	QualityIndex float64   `json:"quality_index"`
	Degraded     bool      `json:"degraded"`
	ElapsedMs    int64     `json:"elapsedMs"`
	FilePath     string    `json:"filePath,omitempty"`
	CreateAt     time.Time `json:"createAt"`
}

const columns = `id, request_id, filename, format, bytes, species, disease,
		confidence, severity, quality_index, degraded, elapsed_ms, path, create_at`

func (conn *DBconn) createTable(ctx context.Context) error {
	if _, err := conn.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id CHAR(36) NOT NULL PRIMARY KEY,
		request_id VARCHAR(64) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		format VARCHAR(16) NOT NULL,
		bytes BIGINT NOT NULL,
		species VARCHAR(80) NOT NULL,
		disease VARCHAR(120) NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		severity VARCHAR(8) NOT NULL,
		quality_index DOUBLE PRECISION NOT NULL,
		degraded BOOLEAN NOT NULL,
		elapsed_ms BIGINT NOT NULL,
		path VARCHAR(512) NOT NULL,
		create_at TIMESTAMP NOT NULL);`, conn.TableName)); err != nil {
		return err
	}

	return nil
}

func (conn *DBconn) existsTable(ctx context.Context) bool {
	rows, err := conn.db.QueryContext(ctx, fmt.Sprintf("SELECT id FROM %s LIMIT 1;", conn.TableName))
	if err != nil {
		return false
	}
	rows.Close()

	return true
}

func (conn *DBconn) initTable(ctx context.Context) error {
	if !conn.existsTable(ctx) {
		log.Printf("Create DB table: %s", conn.TableName)
		return conn.createTable(ctx)
	}

	return nil
}

// rebind "?" placeholder를 드라이버에 맞게 변환
func (conn *DBconn) rebind(query string) string {
	return rebind(conn.DriverName, query)
}

func rebind(driverName, query string) string {
	if driverName != DriverPgx {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Insert entry 삽입
func (conn *DBconn) Insert(ctx context.Context, item Item) error {
	_, err := conn.db.ExecContext(ctx, conn.rebind(fmt.Sprintf(`INSERT INTO %s (
		%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`, conn.TableName, columns)),
		item.ID, item.RequestID, item.Filename, item.FileFormat, item.Bytes,
		item.Species, item.Disease, item.Confidence, item.Severity, item.QualityIndex,
		item.Degraded, item.ElapsedMs, item.FilePath, item.CreateAt.UTC(),
	)

	return err
}

// List 최근 entry 부터 limit 개 반환
func (conn *DBconn) List(ctx context.Context, limit int) ([]Item, error) {
	rows, err := conn.db.QueryContext(ctx, conn.rebind(fmt.Sprintf(`SELECT %s FROM %s
		ORDER BY create_at DESC LIMIT ?;`, columns, conn.TableName)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0, limit)
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.RequestID, &item.Filename, &item.FileFormat, &item.Bytes,
			&item.Species, &item.Disease, &item.Confidence, &item.Severity, &item.QualityIndex,
			&item.Degraded, &item.ElapsedMs, &item.FilePath, &item.CreateAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Delete entry 삭제
func (conn *DBconn) Delete(ctx context.Context, id string) (int64, error) {
	res, err := conn.db.ExecContext(ctx, conn.rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?;", conn.TableName)), id)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Destroy db connection 해제
func (conn *DBconn) Destroy() error {
	return conn.db.Close()
}

func connInfo(cfg Config) (string, error) {
	if cfg.DriverName != DriverMySQL {
		return cfg.ConnInfo, nil
	}

	// create_at을 time.Time으로 읽기 위해 parseTime 강제
	mcfg, err := mysql.ParseDSN(cfg.ConnInfo)
	if err != nil {
		return "", err
	}
	mcfg.ParseTime = true

	return mcfg.FormatDSN(), nil
}

func ping(ctx context.Context, db *sql.DB) error {
	op := func() error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(ctx)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), constants.JournalConnectRetries), ctx)

	return backoff.RetryNotify(op, b, func(err error, d time.Duration) {
		log.Printf("DB ping failed: %s, retry in %s", err, d)
	})
}

// New 새로운 db connection 생성
func New(ctx context.Context, cfg Config) (*DBconn, error) {
	switch cfg.DriverName {
	case DriverMySQL, DriverPgx:
	default:
		return nil, fmt.Errorf("Unsupported driver: %s", cfg.DriverName)
	}

	if !tableNameRe.MatchString(cfg.TableName) {
		return nil, fmt.Errorf("Invalid table name: %s", cfg.TableName)
	}

	dsn, err := connInfo(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	conn := &DBconn{
		DriverName: cfg.DriverName,
		TableName:  cfg.TableName,
		db:         db,
	}

	if err := conn.initTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return conn, nil
}
