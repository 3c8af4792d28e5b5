// Package io reads and writes scene snapshots as JSON or YAML.
//
// # Scene Format
//
//	{
//	  "frames": [
//	    {"id": "home", "name": "Home", "x": 0, "y": 0, "width": 375, "height": 812}
//	  ],
//	  "shapes": [
//	    {"id": "card", "parent": "home", "x": 16, "y": 100, "width": 343, "height": 200},
//	    {"id": "badge", "parent": "card", "x": 300, "y": 90, "width": 24, "height": 24,
//	     "rotation": 45, "stack": 2},
//	    {"id": "toolbar", "parent": "home", "x": 0, "y": 0, "width": 375, "height": 56,
//	     "layout": {"mode": "horizontal", "padding": {"left": 16, "right": 16}}}
//	  ]
//	}
//
// Positions are absolute canvas coordinates. A shape is placed either by
// x/y plus an optional rotation in degrees about its origin, or by an
// explicit six-element "transform" [a b c d e f] which takes precedence.
//
// The same document may be written in YAML with identical keys.
//
// # Import
//
// [ImportScene] picks the decoder from the file extension (.yaml and .yml
// are YAML, everything else JSON). [ReadScene] decodes from any reader.
// Malformed documents return an INVALID_FORMAT error; structural problems
// such as duplicate ids are reported later by scene.NewIndex.
//
// # Export
//
// [WriteScene] and [ExportScene] always write the explicit transform so that
// sheared or otherwise unusual matrices survive a round trip.
package io
