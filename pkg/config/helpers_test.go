package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
inputs:
  name:
    type: string
    default: world
  count:
    default: 3
  tags:
    type: list
    default: [a, b]
nodes:
  fetch:
    outputs:
      type: dict
      default:
        x: 1
        items:
          - id: 7
greeting: "${inputs.name}"
again: "${ inputs.name }"
count: "${inputs.count}"
x: "${nodes.fetch.output.x}"
alias_x: "${fetch.output.x}"
first_id: "${nodes.fetch.output.items.0.id}"
list:
  - "${inputs.name}"
  - plain
  - "${inputs.missing}"
`

func loadYAML(t *testing.T, doc string, opts ...Option) *Root {
	t.Helper()
	root, err := FromYAML(strings.NewReader(doc), opts...)
	require.NoError(t, err)
	return root
}
