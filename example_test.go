package pdasim_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/domain"
)

func ExampleEngine_Validate() {
	eng, err := pdasim.New("")
	if err != nil {
		log.Fatal(err)
	}

	bp := &domain.Blueprint{
		Rules: []string{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,b,A)=(q1,ε)"},
		Final: []string{"q1"},
		Examples: []domain.Example{
			{Input: "ab", Expect: domain.ExpectAccept},
			{Input: "b", Expect: domain.ExpectReject},
		},
	}

	results, err := eng.Validate(context.Background(), bp)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Println(r.Input, r.Status, r.Passed)
	}
	// Output:
	// ab accepted true
	// b rejected true
}
