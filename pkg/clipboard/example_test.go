package clipboard_test

import (
	"fmt"
	"log"
	"os"

	"github.com/Hanaasagi/targetlock/pkg/clipboard"
)

func ExampleNew() {
	// Copy a measurement summary to every available target
	c := clipboard.New()
	if err := c.Copy("Distance: 4.00m (13.1ft)"); err != nil {
		log.Printf("Copy failed: %v", err)
	}

	fmt.Println("Measurement copied")
	// Output: Measurement copied
}

func ExampleNew_withOptions() {
	// Only emit the OSC52 sequence, e.g. over SSH
	c := clipboard.New(
		clipboard.WithTmux(false),
		clipboard.WithSystem(false),
		clipboard.WithOutput(os.Stderr),
	)
	if err := c.Copy("Height: 1.70m"); err != nil {
		log.Printf("Copy failed: %v", err)
	}

	fmt.Println("Copied via OSC52")
	// Output: Copied via OSC52
}

func ExampleStripANSI() {
	fmt.Println(clipboard.StripANSI("\x1b[32m85%\x1b[0m confidence"))
	// Output: 85% confidence
}
