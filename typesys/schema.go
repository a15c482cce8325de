// Copyright (C) 2022 Sneller, Inc.
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

package typesys

import (
	"strconv"

	"golang.org/x/exp/slices"
)

// Schema is an ordered sequence of tags, one per column. Its length
// is the column count; it is immutable for the lifetime of a run.
type Schema []DataType

// Validate reports the first invalid tag found in the schema, if any.
func (s Schema) Validate() error {
	for i, t := range s {
		if !t.Valid() {
			return &InvalidTagError{Index: i, Tag: t}
		}
	}
	return nil
}

// InvalidTagError is returned by Schema.Validate.
type InvalidTagError struct {
	Index int
	Tag   DataType
}

func (e *InvalidTagError) Error() string {
	return "typesys: schema column " + strconv.Itoa(e.Index) + " has invalid tag " + e.Tag.String()
}

// BlockPlan is the result of grouping a schema by tag: the stable
// run-length grouping used by a Destination's allocate step (see
// §4.4). Blocks appear in ascending tag order; Index maps each
// original schema position to (block, offset-within-block).
type BlockPlan struct {
	// Tags holds one entry per block, naming the tag it stores.
	Tags []DataType
	// Counts holds the column count of each block, same length as Tags.
	Counts []int
	// Index maps schema column -> (block id, offset within block),
	// preserving the caller's original column order.
	Index []ColumnRef
}

// ColumnRef locates a schema column inside the block layout.
type ColumnRef struct {
	Block  int
	Offset int
}

// PlanBlocks implements the allocation algorithm from §4.4:
//  1. stable-sort a copy of the schema by tag to produce consecutive
//     runs of the same tag;
//  2. group the runs and assign one block per run;
//  3. build the column index by counting, in the *original* schema
//     order, how many columns of each tag have been seen so far.
//
// This keeps the caller's column ordering intact while achieving
// same-type contiguity inside each block.
func (s Schema) PlanBlocks() BlockPlan {
	type tagAt struct {
		tag DataType
		pos int
	}
	sorted := make([]tagAt, len(s))
	for i, t := range s {
		sorted[i] = tagAt{t, i}
	}
	slices.SortStableFunc(sorted, func(a, b tagAt) bool {
		return a.tag < b.tag
	})

	var plan BlockPlan
	plan.Index = make([]ColumnRef, len(s))

	blockOf := make(map[DataType]int)
	i := 0
	for i < len(sorted) {
		tag := sorted[i].tag
		j := i
		for j < len(sorted) && sorted[j].tag == tag {
			j++
		}
		blockOf[tag] = len(plan.Tags)
		plan.Tags = append(plan.Tags, tag)
		plan.Counts = append(plan.Counts, j-i)
		i = j
	}

	perTagSeen := make(map[DataType]int, len(blockOf))
	for pos, tag := range s {
		offset := perTagSeen[tag]
		plan.Index[pos] = ColumnRef{Block: blockOf[tag], Offset: offset}
		perTagSeen[tag] = offset + 1
	}
	return plan
}
