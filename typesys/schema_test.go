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
	"errors"
	"testing"
)

func TestPlanBlocksMixedTypes(t *testing.T) {
	schema := Schema{U64, F64, String}
	plan := schema.PlanBlocks()

	if len(plan.Tags) != 3 {
		t.Fatalf("expected 3 blocks for 3 distinct tags, got %d", len(plan.Tags))
	}
	for i, ref := range plan.Index {
		if plan.Tags[ref.Block] != schema[i] {
			t.Errorf("column %d: block %d has tag %s, want %s", i, ref.Block, plan.Tags[ref.Block], schema[i])
		}
		if ref.Offset != 0 {
			t.Errorf("column %d: expected offset 0 (single column per block), got %d", i, ref.Offset)
		}
	}
}

func TestPlanBlocksGroupsSameTag(t *testing.T) {
	schema := Schema{U64, U64, U64, F64, U64}
	plan := schema.PlanBlocks()

	if len(plan.Tags) != 2 {
		t.Fatalf("expected 2 blocks (U64, F64), got %d", len(plan.Tags))
	}

	// every schema column must map into a block whose tag matches it.
	seenOffsets := map[int]map[int]bool{}
	for col, ref := range plan.Index {
		if plan.Tags[ref.Block] != schema[col] {
			t.Fatalf("column %d tag %s routed to block tagged %s", col, schema[col], plan.Tags[ref.Block])
		}
		if seenOffsets[ref.Block] == nil {
			seenOffsets[ref.Block] = map[int]bool{}
		}
		if seenOffsets[ref.Block][ref.Offset] {
			t.Fatalf("duplicate (block, offset) pair %v for column %d", ref, col)
		}
		seenOffsets[ref.Block][ref.Offset] = true
	}

	// index is a bijection: every block's column count equals the
	// number of schema columns mapping to it.
	for b, count := range plan.Counts {
		if len(seenOffsets[b]) != count {
			t.Errorf("block %d: Counts says %d columns, index has %d", b, count, len(seenOffsets[b]))
		}
	}

	// original column order is preserved: U64 columns keep increasing
	// offsets in the order they appear in schema, not sorted order.
	u64Block := plan.Index[0].Block
	for i, col := range []int{0, 1, 2, 4} {
		if plan.Index[col].Block != u64Block {
			t.Fatalf("U64 column %d not grouped into block %d", col, u64Block)
		}
		if plan.Index[col].Offset != i {
			t.Errorf("U64 column %d: offset = %d, want %d", col, plan.Index[col].Offset, i)
		}
	}
}

func TestSchemaValidate(t *testing.T) {
	good := Schema{U64, OptU64, F64, OptF64, Bool, OptBool, String, Timestamp}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Schema{U64, DataType(99)}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected error for invalid tag")
	}
	var tagErr *InvalidTagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("expected *InvalidTagError, got %T", err)
	}
	if tagErr.Index != 1 {
		t.Errorf("Index = %d, want 1", tagErr.Index)
	}
}

func TestCheckTypeAssoc(t *testing.T) {
	if err := Check[uint64](U64); err != nil {
		t.Errorf("Check[uint64](U64) = %v, want nil", err)
	}
	if err := Check[*uint64](OptU64); err != nil {
		t.Errorf("Check[*uint64](OptU64) = %v, want nil", err)
	}
	if err := Check[string](U64); err == nil {
		t.Error("Check[string](U64) should fail")
	}
}

func TestRealizeDispatchesOncePerColumn(t *testing.T) {
	calls := 0
	r := Realizer[int]{
		U64: func() int { calls++; return 1 },
		F64: func() int { calls++; return 2 },
	}
	v, err := r.Realize(U64)
	if err != nil || v != 1 {
		t.Fatalf("Realize(U64) = (%d, %v)", v, err)
	}
	if _, err := r.Realize(Bool); err == nil {
		t.Fatal("Realize(Bool) should fail: no Bool thunk registered")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}
