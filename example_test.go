package bloomd_test

import (
	"fmt"

	"github.com/probitech/bloomd"
)

// This example demonstrates basic membership testing.
func Example() {
	// A filter for 10,000 items with a 1% false positive rate.
	f, err := bloomd.NewWithRate(10_000, 0.01)
	if err != nil {
		panic(err)
	}

	f.InsertString("apple")
	f.InsertString("banana")

	fmt.Println("apple:", f.ContainsString("apple"))
	fmt.Println("banana:", f.ContainsString("banana"))
	fmt.Println("grape:", f.ContainsString("grape"))

	// Output:
	// apple: true
	// banana: true
	// grape: false
}

// This example fixes the hash count instead of the false positive rate.
func Example_hashCount() {
	f, err := bloomd.NewWithHashCount(10_000, 5)
	if err != nil {
		panic(err)
	}

	f.InsertString("user:12345")

	fmt.Println("k:", f.K())
	fmt.Println("user:12345:", f.ContainsString("user:12345"))

	// Output:
	// k: 5
	// user:12345: true
}
