package aluopt

import (
	"context"
	"fmt"
	"log"
)

// This is an example of how to fuse a multiplication and an addition into a multiply-add.
func Example() {
	p, err := LoadProgram([]byte(`target: {gen: gfx9}
blocks:
- instructions:
  - "%1:v1, %2:v1, %3:v1 = p_startpgm"
  - "%4:v1 = v_mul_f32 %1, %2"
  - "%5:v1 = v_add_f32 %4, %3"
  - "p_unit_test %5"
`))
	if err != nil {
		log.Fatal(err)
	}

	if err = Optimize(context.Background(), p, nil); err != nil {
		log.Fatal(err)
	}

	for _, instr := range p.Instructions(0) {
		fmt.Println(instr)
	}

	// Output:
	// %1:v1, %2:v1, %3:v1 = p_startpgm
	// %5:v1 = v_mad_f32 %1, %2, %3
	// p_unit_test %5
}
