package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
)

func main() {
	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║          PETRI NET EXECUTION ENGINE - DEMO                 ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("This demo runs the spec's end-to-end scenarios against core/qnet:")
	fmt.Println()
	fmt.Println("1. Producer-Consumer    - single cycle feeding a buffer")
	fmt.Println("2. Split-Join           - fan-out then rendezvous")
	fmt.Println("3. Dining Philosophers  - embedded sub-nets, deadlock freedom")
	fmt.Println("4. Capacity Bound       - a bounded place blocks a second producer")
	fmt.Println("5. Timed Transition     - minimum inter-firing spacing")
	fmt.Println("6. OR-Gate              - logic gate built from places and transitions")
	fmt.Println()
	fmt.Print("Select example (1-6) or 'q' to quit: ")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	choice := scanner.Text()

	var example string
	switch choice {
	case "1":
		example = "examples/01_producer_consumer.go"
	case "2":
		example = "examples/02_split_join.go"
	case "3":
		example = "examples/03_dining_philosophers.go"
	case "4":
		example = "examples/04_capacity_bound.go"
	case "5":
		example = "examples/05_timed_transition.go"
	case "6":
		example = "examples/06_or_gate.go"
	case "q", "Q":
		fmt.Println("Goodbye!")
		return
	default:
		fmt.Println("Invalid choice")
		return
	}

	fmt.Println()
	fmt.Println("Running example...")
	fmt.Println()

	cmd := exec.Command("go", "run", example)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("Error running example: %v\n", err)
	}
}
