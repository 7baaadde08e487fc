// Package savers implements Savers, which observe the steps of an
// environment and record data about them to disk
package savers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/dmcgym/timestep"
	"go.uber.org/multierr"
)

// Saver observes the steps of an environment. Track is called once
// for every step taken in the environment, and Close flushes anything
// the Saver has buffered to disk.
type Saver interface {
	Track(t ts.TimeStep) error
	Close() error
}

// Multi fans out each tracked TimeStep to a number of Savers
type Multi []Saver

// Track tracks t with every Saver, continuing past Savers which fail
func (m Multi) Track(t ts.TimeStep) error {
	var err error
	for _, saver := range m {
		err = multierr.Append(err, saver.Track(t))
	}
	return err
}

// Close closes every Saver
func (m Multi) Close() error {
	var err error
	for _, saver := range m {
		err = multierr.Append(err, saver.Close())
	}
	return err
}

// save gob-encodes data to filename
func save(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}

	en := gob.NewEncoder(file)
	if err = en.Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("save: could not encode data: %v", err)
	}
	return file.Close()
}

// LoadData loads and returns the data saved by a Return saver
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	var data []float64
	dec := gob.NewDecoder(file)
	if err = dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}

// LoadLengths loads and returns the data saved by an EpisodeLength
// saver
func LoadLengths(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadLengths: could not open data file: %v",
			err)
	}
	defer file.Close()

	var data []int
	dec := gob.NewDecoder(file)
	if err = dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loadLengths: could not decode data: %v", err)
	}
	return data, nil
}
