package main

import (
	"context"
	"fmt"

	"quantanet/core/qnet"
	"quantanet/core/workflow"
	"quantanet/dsl"
)

func main() {
	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║        PETRI NET EXECUTION ENGINE - DSL DEMO               ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()

	// Parse workflow from YAML
	parser := dsl.NewParser()
	wf, err := parser.ParseFile("workflows/api_rate_limit.yml")
	if err != nil {
		fmt.Printf("Error parsing workflow: %v\n", err)
		return
	}

	fmt.Printf("📋 Loaded workflow: %s\n", wf.Name)
	fmt.Printf("   Resources: %d\n", len(wf.Resources))
	fmt.Printf("   Channels:  %d\n", len(wf.Channels))
	fmt.Printf("   Tasks:     %d\n", len(wf.Tasks))
	fmt.Println()

	// Compile workflow to Petri net
	compiler := workflow.NewCompiler()
	net, err := compiler.Compile(wf)
	if err != nil {
		fmt.Printf("Error compiling workflow: %v\n", err)
		return
	}

	fmt.Println("✅ Workflow compiled to Petri net")
	fmt.Printf("   Places (initial state): %v\n", net.State())
	fmt.Println()

	fmt.Println("🚀 Driving the compiled net...")
	fmt.Println()

	driver := qnet.NewDriver(net)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		result, more, err := driver.Next(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if !more {
			fmt.Println("quiescent: no transition remains enabled")
			break
		}
		fmt.Printf("  step %d: fired %-10s -> %v\n", i+1, result.Fired, result.State)
	}

	fmt.Println("\n✨ Workflow compiled and driven as a pure counting Petri net!")
	fmt.Println("\n🔑 Key properties:")
	fmt.Println("   ✅ YAML-based workflow definition (no code!)")
	fmt.Println("   ✅ Resource requirements compile to borrow/return arcs")
	fmt.Println("   ✅ A channel's capacity is the engine's own backpressure")
	fmt.Println("   ✅ Task actions run as place tasks, not inline RPCs")
}
