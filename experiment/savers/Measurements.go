package savers

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	ts "github.com/samuelfneumann/dmcgym/timestep"
	"gonum.org/v1/gonum/mat"
)

const (
	// MeasurementsBinary is the name of the binary measurement log
	MeasurementsBinary string = "measurements.f64"

	// MeasurementsCSV is the name of the CSV mirror of the measurement
	// log
	MeasurementsCSV string = "measurements.csv"
)

// headerSize is the size of the binary log header, which holds the
// number of columns in each row
const headerSize int64 = 8

// Measurements is an append-only log of the flattened observations of
// tracked steps. Each tracked step appends one row to a binary log of
// little-endian float64s, and the same row to a CSV mirror whose first
// column is the row index.
//
// A log directory which already holds measurements is resumed, in
// which case the width of new rows must match the existing rows.
type Measurements struct {
	bin  *os.File
	csv  *os.File
	w    *csv.Writer
	cols int
	rows int
}

// NewMeasurements returns a new Measurements saver logging to logDir
func NewMeasurements(logDir string) (*Measurements, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("newMeasurements: could not create log "+
			"directory: %v", err)
	}

	binPath := filepath.Join(logDir, MeasurementsBinary)
	bin, err := os.OpenFile(binPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("newMeasurements: %v", err)
	}

	m := &Measurements{bin: bin}
	if err := m.readHeader(); err != nil {
		bin.Close()
		return nil, fmt.Errorf("newMeasurements: %v", err)
	}

	csvPath := filepath.Join(logDir, MeasurementsCSV)
	m.csv, err = os.OpenFile(csvPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND,
		0o644)
	if err != nil {
		bin.Close()
		return nil, fmt.Errorf("newMeasurements: %v", err)
	}
	m.w = csv.NewWriter(m.csv)

	return m, nil
}

// readHeader reads the number of columns and rows of an existing log
func (m *Measurements) readHeader() error {
	info, err := m.bin.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	var cols uint64
	if err := binary.Read(m.bin, binary.LittleEndian, &cols); err != nil {
		return fmt.Errorf("could not read header: %v", err)
	}
	if cols == 0 {
		return fmt.Errorf("corrupt log with 0 columns")
	}

	rowBytes := int64(cols) * 8
	body := info.Size() - headerSize
	if body%rowBytes != 0 {
		return fmt.Errorf("corrupt log of %v bytes with rows of %v bytes",
			body, rowBytes)
	}

	m.cols = int(cols)
	m.rows = int(body / rowBytes)
	return nil
}

// Track appends the flattened observation of t to the log. The First
// TimeStep of an episode is not logged.
func (m *Measurements) Track(t ts.TimeStep) error {
	if t.First() {
		return nil
	}
	return m.Append(t.Observation.Flatten().RawVector().Data)
}

// Append appends a row to the log
func (m *Measurements) Append(row []float64) error {
	if len(row) == 0 {
		return fmt.Errorf("append: cannot log an empty row")
	}

	if m.cols == 0 {
		m.cols = len(row)
		if err := m.writeHeader(); err != nil {
			return fmt.Errorf("append: %v", err)
		}
	} else if len(row) != m.cols {
		return fmt.Errorf("append: row of length %v does not match log of "+
			"width %v", len(row), m.cols)
	}

	if _, err := m.bin.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("append: %v", err)
	}
	if err := binary.Write(m.bin, binary.LittleEndian, row); err != nil {
		return fmt.Errorf("append: could not write row: %v", err)
	}

	record := make([]string, len(row)+1)
	record[0] = strconv.Itoa(m.rows)
	for i, v := range row {
		record[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := m.w.Write(record); err != nil {
		return fmt.Errorf("append: could not write CSV row: %v", err)
	}
	m.w.Flush()
	if err := m.w.Error(); err != nil {
		return fmt.Errorf("append: could not write CSV row: %v", err)
	}

	m.rows++
	return nil
}

// writeHeader writes the header of a new binary log and of its CSV
// mirror. The CSV header has an empty index column name followed by
// the column indices.
func (m *Measurements) writeHeader() error {
	if _, err := m.bin.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(m.bin, binary.LittleEndian,
		uint64(m.cols)); err != nil {
		return fmt.Errorf("could not write header: %v", err)
	}

	header := make([]string, m.cols+1)
	for i := 0; i < m.cols; i++ {
		header[i+1] = strconv.Itoa(i)
	}
	if err := m.w.Write(header); err != nil {
		return fmt.Errorf("could not write CSV header: %v", err)
	}
	return nil
}

// Rows returns the number of rows in the log
func (m *Measurements) Rows() int {
	return m.rows
}

// Close closes the log
func (m *Measurements) Close() error {
	m.w.Flush()
	err := m.w.Error()
	if cerr := m.csv.Close(); err == nil {
		err = cerr
	}
	if cerr := m.bin.Close(); err == nil {
		err = cerr
	}
	return err
}

// LoadMeasurements loads the binary measurement log in logDir. Each
// row of the returned matrix is one logged row.
func LoadMeasurements(logDir string) (*mat.Dense, error) {
	file, err := os.Open(filepath.Join(logDir, MeasurementsBinary))
	if err != nil {
		return nil, fmt.Errorf("loadMeasurements: %v", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var cols uint64
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, fmt.Errorf("loadMeasurements: could not read header: %v",
			err)
	}

	var data []float64
	row := make([]float64, cols)
	for {
		err := binary.Read(r, binary.LittleEndian, row)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("loadMeasurements: could not read row "+
				"%v: %v", len(data)/int(cols), err)
		}
		data = append(data, row...)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("loadMeasurements: log has no rows")
	}
	return mat.NewDense(len(data)/int(cols), int(cols), data), nil
}
