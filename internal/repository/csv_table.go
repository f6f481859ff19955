package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"theknife/internal/pkg/metrics"
)

// csvRow is one data row with the line it started on, for warnings.
type csvRow struct {
	line   int
	fields []string
}

// readTable reads a header-first CSV file. A missing file reads as an empty
// table. Rows the CSV reader rejects are logged and skipped.
func readTable(path string, log *zap.Logger) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return readRows(r, path, log)
}

// recordReader is the subset of *csv.Reader readRows needs.
type recordReader interface {
	Read() ([]string, error)
	FieldPos(field int) (line, column int)
}

// readRows drops the first record as the header. A rejected record still
// counts as the first one, so a broken header never eats a data row.
func readRows(r recordReader, path string, log *zap.Logger) ([]csvRow, error) {
	var rows []csvRow
	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			header = false
			log.Warn("skipping unreadable csv row",
				zap.String("file", path), zap.Int("line", pe.StartLine), zap.Error(err))
			metrics.RowsSkipped.WithLabelValues(filepath.Base(path)).Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, csvRow{line: line, fields: rec})
	}
	return rows, nil
}

// writeTableAtomic replaces path with header+rows. The data goes to a temp file
// in the same directory first and is renamed over path only once it is synced,
// so a crash leaves either the old or the new table.
func writeTableAtomic(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// appendRow adds one row at the end of path, writing the header first if the
// file is new or empty.
func appendRow(path string, header, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	} else if !endsWithNewline(f, st.Size()) {
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Sync()
}

func endsWithNewline(f *os.File, size int64) bool {
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil {
		return true
	}
	return buf[0] == '\n'
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
