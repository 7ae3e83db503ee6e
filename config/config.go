// Copyright (C) 2024 Daniel Walterskoetter
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config holds the engine-wide tunables, loadable either
// programmatically (DefaultEngine plus field overrides) or from a YAML
// manifest (Load).
package config

import (
	"io"

	"gopkg.in/yaml.v2"
)

// Engine holds the configuration knobs that influence strategy selection
// in the group-by dispatcher and the physical planner. All fields have
// conservative defaults (DefaultEngine).
type Engine struct {
	// ParallelThreshold is the row count below which every kernel runs
	// single-threaded.
	ParallelThreshold int `yaml:"parallel_threshold"`

	// CatCardinalityCap is the maximum number of distinct strings the
	// category pre-pass will tolerate before aborting to the plain string
	// Swiss table.
	CatCardinalityCap int `yaml:"cat_cardinality_cap"`

	// PartitionTargetSize is the target row count per partition for the
	// partitioned-parallel path; the actual partition count is rounded to
	// a power of two in [16,1024].
	PartitionTargetSize int `yaml:"partition_target_size"`

	// DenseRangeFactor bounds how sparse a single Int32 key's value range
	// may be relative to the row count before direct addressing is
	// abandoned for the sparse Swiss table: direct
	// addressing requires range <= DenseRangeFactor * n.
	DenseRangeFactor int `yaml:"dense_range_factor"`

	// PartitionedParallelTrigger is the minimum row count before the
	// partitioned-parallel path is considered at all, separate
	// from ParallelThreshold because partitioning has its own fixed
	// overhead that isn't worth paying for a merely "parallel-eligible"
	// input.
	PartitionedParallelTrigger int `yaml:"partitioned_parallel_trigger"`
}

// DefaultEngine returns the configuration used when none is supplied.
func DefaultEngine() Engine {
	return Engine{
		ParallelThreshold:          100_000,
		CatCardinalityCap:          65_536,
		PartitionTargetSize:        1 << 15, // 32768 rows/partition by default
		DenseRangeFactor:           4,
		PartitionedParallelTrigger: 500_000,
	}
}

// Load reads a YAML manifest from r, starting from DefaultEngine and
// overriding only the fields present in the document.
func Load(r io.Reader) (Engine, error) {
	e := DefaultEngine()
	b, err := io.ReadAll(r)
	if err != nil {
		return e, err
	}
	if err := yaml.Unmarshal(b, &e); err != nil {
		return e, err
	}
	return e, nil
}

// PartitionCount rounds PartitionTargetSize-driven partitioning to a power
// of two in [16,1024], given the input row count n.
func (e Engine) PartitionCount(n int) int {
	target := e.PartitionTargetSize
	if target <= 0 {
		target = DefaultEngine().PartitionTargetSize
	}
	p := n / target
	if p < 16 {
		p = 16
	}
	if p > 1024 {
		p = 1024
	}
	return nextPow2(p)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
