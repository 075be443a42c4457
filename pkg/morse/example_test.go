package morse_test

import (
	"fmt"

	"github.com/robotalks/morse.go/pkg/morse"
)

func ExampleEncode() {
	msg, err := morse.Encode("Hi 5!")
	if err != nil {
		panic(err)
	}
	fmt.Println(msg.Text())
	fmt.Println(msg)
	// Output:
	// Hi 5
	// .... .. / .....
}
