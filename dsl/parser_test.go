package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantanet/dsl"
)

const minimalYAML = `
workflow:
  name: minimal
  resources:
    - id: slot
      type: semaphore
      capacity: 1
  channels:
    - id: buffer
      capacity: 0
  tasks:
    - id: produce
      type: generator
      output: buffer
      requires:
        slot: 1
    - id: consume
      type: transform
      input: buffer
      source: buffer
      destination: sink
`

func TestParseMinimalWorkflow(t *testing.T) {
	wf, err := dsl.NewParser().Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "minimal", wf.Name)
	require.Len(t, wf.Resources, 1)
	assert.Equal(t, "slot", wf.Resources[0].ID)
	require.Len(t, wf.Tasks, 2)
	assert.Equal(t, "produce", wf.Tasks[0].ID)
	assert.Equal(t, 1, wf.Tasks[0].Requires["slot"])

	// defaultAction wires a built-in Action by Type; both task types here
	// have one, so both should be runnable rather than nil.
	require.NotNil(t, wf.Tasks[0].Action)
	require.NotNil(t, wf.Tasks[1].Action)
	assert.NoError(t, wf.Tasks[0].Action(nil))
	assert.NoError(t, wf.Tasks[1].Action(nil))
}

func TestParseUnrecognizedTaskTypeHasNoAction(t *testing.T) {
	const yamlDoc = `
workflow:
  name: barebones
  tasks:
    - id: noop
      type: custom
`
	wf, err := dsl.NewParser().Parse([]byte(yamlDoc))
	require.NoError(t, err)
	require.Len(t, wf.Tasks, 1)
	assert.Nil(t, wf.Tasks[0].Action)
}

func TestParseRejectsDottedID(t *testing.T) {
	const yamlDoc = `
workflow:
  name: bad
  tasks:
    - id: sub.task
`
	_, err := dsl.NewParser().Parse([]byte(yamlDoc))
	assert.Error(t, err)
}

func TestParseRejectsInvalidWorkflow(t *testing.T) {
	const yamlDoc = `
workflow:
  name: dup
  channels:
    - id: shared
      capacity: 1
  resources:
    - id: shared
      type: semaphore
      capacity: 1
  tasks:
    - id: t1
`
	_, err := dsl.NewParser().Parse([]byte(yamlDoc))
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	_, err := dsl.NewParser().ParseFile("does-not-exist.yml")
	assert.Error(t, err)
}
