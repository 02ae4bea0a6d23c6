package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/netstats-history/netdelta/internal/logging"
	"github.com/netstats-history/netdelta/internal/models"
)

// DuckStoreOptions configures a DuckStore.
type DuckStoreOptions struct {
	// TempDir holds the database file. Empty keeps the database in memory.
	TempDir     string
	MemoryLimit string
	Threads     int
	BatchSize   int
	Logger      *log.Logger
}

const defaultDuckBatchSize = 50000

// DuckStore keeps samples in DuckDB, one row per (sample, interface). With a
// TempDir the data spills to a file so logs larger than RAM can be analyzed.
// The file is removed on Close; nothing survives the run.
type DuckStore struct {
	db        *sql.DB
	dbPath    string
	batchSize int
	batch     []models.Sample
	count     int
	flushed   int
	frozen    bool
	logger    *log.Logger
}

// NewDuckStore opens a fresh DuckDB database and creates the samples table.
func NewDuckStore(opts DuckStoreOptions) (*DuckStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultDuckBatchSize
	}

	dbPath := ""
	if opts.TempDir != "" {
		if err := os.MkdirAll(opts.TempDir, 0755); err != nil {
			return nil, fmt.Errorf("creating temp directory: %w", err)
		}
		dbPath = filepath.Join(opts.TempDir, fmt.Sprintf("netdelta_%s.duckdb", uuid.New().String()))
	}

	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
	}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	// ifname is NULL only for a sample that lists no interfaces, so the sample
	// still occupies its slot in the sequence.
	_, err = db.Exec(`
		CREATE TABLE samples (
			seq       INTEGER NOT NULL,
			line      INTEGER NOT NULL,
			ts        BIGINT NOT NULL,
			tz_offset INTEGER NOT NULL,
			pos       INTEGER NOT NULL,
			ifname    VARCHAR,
			rx        UBIGINT NOT NULL,
			tx        UBIGINT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		if dbPath != "" {
			os.Remove(dbPath)
		}
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	where := dbPath
	if where == "" {
		where = "memory"
	}
	logger.Debugf("[DuckStore] database ready at %s", where)

	return &DuckStore{
		db:        db,
		dbPath:    dbPath,
		batchSize: batchSize,
		batch:     make([]models.Sample, 0, min(batchSize, 4096)),
		logger:    logger,
	}, nil
}

// Append buffers the sample and flushes a full batch through the Appender API.
func (ds *DuckStore) Append(sample models.Sample) error {
	if ds.frozen {
		return ErrFrozen
	}
	ds.batch = append(ds.batch, sample)
	ds.count++
	if len(ds.batch) >= ds.batchSize {
		return ds.flushBatch()
	}
	return nil
}

func (ds *DuckStore) flushBatch() error {
	if len(ds.batch) == 0 {
		return nil
	}
	start := time.Now()

	conn, err := ds.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "samples")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, sample := range ds.batch {
			seq := int32(ds.flushed + i)
			ts := sample.Timestamp.UnixNano()
			_, offset := sample.Timestamp.Zone()

			if len(sample.Interfaces) == 0 {
				if err := appender.AppendRow(seq, int32(sample.Line), ts, int32(offset), int32(0), nil, uint64(0), uint64(0)); err != nil {
					return fmt.Errorf("failed to append sample %d: %w", seq, err)
				}
				continue
			}
			for pos, ic := range sample.Interfaces {
				if err := appender.AppendRow(seq, int32(sample.Line), ts, int32(offset), int32(pos), ic.Name, ic.RX, ic.TX); err != nil {
					return fmt.Errorf("failed to append sample %d: %w", seq, err)
				}
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ds.logger.Debugf("[DuckStore] flushed %d samples in %v", len(ds.batch), time.Since(start))
	ds.flushed += len(ds.batch)
	ds.batch = ds.batch[:0]
	return nil
}

// Freeze flushes the remaining batch and indexes the table for reading.
func (ds *DuckStore) Freeze() error {
	if ds.frozen {
		return nil
	}
	if err := ds.flushBatch(); err != nil {
		return err
	}
	if _, err := ds.db.Exec("CREATE INDEX idx_seq ON samples(seq)"); err != nil {
		return fmt.Errorf("idx_seq creation failed: %w", err)
	}
	ds.frozen = true
	return nil
}

// Samples rebuilds the ordered sample sequence from the table.
func (ds *DuckStore) Samples(ctx context.Context) ([]models.Sample, error) {
	if !ds.frozen {
		return nil, ErrNotFrozen
	}

	rows, err := ds.db.QueryContext(ctx, `
		SELECT seq, line, ts, tz_offset, ifname, rx, tx
		FROM samples ORDER BY seq, pos
	`)
	if err != nil {
		return nil, fmt.Errorf("samples query failed: %w", err)
	}
	defer rows.Close()

	samples := make([]models.Sample, 0, ds.count)
	zones := make(map[int32]*time.Location)
	lastSeq := int32(-1)

	for rows.Next() {
		var seq, line, offset int32
		var ts int64
		var ifname sql.NullString
		var rx, tx uint64
		if err := rows.Scan(&seq, &line, &ts, &offset, &ifname, &rx, &tx); err != nil {
			return nil, err
		}

		if seq != lastSeq {
			loc, ok := zones[offset]
			if !ok {
				loc = time.FixedZone("", int(offset))
				zones[offset] = loc
			}
			samples = append(samples, models.Sample{
				Line:      int(line),
				Timestamp: time.Unix(0, ts).In(loc),
			})
			lastSeq = seq
		}
		if ifname.Valid {
			cur := &samples[len(samples)-1]
			cur.Interfaces = append(cur.Interfaces, models.InterfaceCounters{Name: ifname.String, RX: rx, TX: tx})
		}
	}
	return samples, rows.Err()
}

// Interfaces returns the distinct interface names in lexicographic order.
func (ds *DuckStore) Interfaces(ctx context.Context) ([]string, error) {
	if !ds.frozen {
		return nil, ErrNotFrozen
	}
	rows, err := ds.db.QueryContext(ctx, "SELECT DISTINCT ifname FROM samples WHERE ifname IS NOT NULL ORDER BY ifname")
	if err != nil {
		return nil, fmt.Errorf("interfaces query failed: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (ds *DuckStore) Len() int {
	return ds.count
}

// Close closes the database and removes its file.
func (ds *DuckStore) Close() error {
	var err error
	if ds.db != nil {
		err = ds.db.Close()
		ds.db = nil
	}
	if ds.dbPath != "" {
		os.Remove(ds.dbPath)
		os.Remove(ds.dbPath + ".wal")
	}
	return err
}
