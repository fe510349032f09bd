// Package config loads hierarchical JSON or YAML configuration and keeps
// embedded ${dotted.path} placeholders live.
//
// # Key Features
//
// - Tree: ordered mappings, sequences and scalars with dotted-path navigation
// - Variables: every key under inputs, and the output of every key under nodes
// - References: placeholders replaced in place by shared, live handles
// - Propagation: setting a variable updates every placeholder derived from it,
// including ones that reach into nested fields of a structured value
// - Serialization: JSON or YAML, either resolved or as the original template
// - Compressed files: flow.yaml.gz, flow.json.zst and flow.yml.lz4 load and
// save like their plain counterparts
//
// # Document Shape
//
//	inputs:
//	  city:
//	    type: string
//	    default: Berlin
//	nodes:
//	  forecast:
//	    outputs:
//	      type: dict
//	      default: {high: 21, low: 12}
//	report:
//	  where: ${inputs.city}
//	  high: ${nodes.forecast.output.high}
//	  low: ${forecast.output.low}
//
// inputs.city defines the variable "inputs.city". nodes.forecast defines
// "nodes.forecast.output", also reachable as "forecast.output". A placeholder
// binds to the definition whose name is its longest dotted prefix; the rest
// of the name navigates into the definition's value.
//
// # Usage
//
//	root, err := config.FromFile("hablo.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	where, _ := root.Get("report.where") // "Berlin"
//	root.Resolver().SetVariable("inputs.city", "Oslo")
//	where, _ = root.Get("report.where") // "Oslo"
//
//	out, _ := root.Dump(config.FormatYAML, false) // resolved values
//	tpl, _ := root.Dump(config.FormatYAML, true)  // ${...} placeholders
//
// # Typed Variables
//
// A declared type picks a coercion from a CoercionTable. The default table
// stores the text of the value for every type except none/null; nested
// placeholders always navigate the value as assigned, before coercion.
// Unknown types are logged and the value is stored as is.
//
// # Diagnostics
//
// Undefined placeholders, nested paths that do not resolve, unknown type
// tags and orphaned references are logged as warnings through zap and
// counted in the metrics package. None of them fail a load.
//
// # Reloading
//
// Root.Reload rebuilds the tree, the definitions and the references from
// the source. No variable value survives a reload. If the source cannot be
// read or parsed the previous tree stays active and the error is returned.
//
// A Root is not safe for concurrent use.
package config
