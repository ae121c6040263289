// Package io serializes arc graphs to JSON, XML and prefix notation, and
// reads the JSON form back.
//
// # JSON Format
//
// The JSON document lists vertices and arcs in a stable order (vertices
// lexicographically, arcs by source, ordinal and target):
//
//	{
//	  "vertices": ["a", "b", "c"],
//	  "arcs": [
//	    {"from": "a", "to": "b", "order": 0},
//	    {"from": "a", "to": "c", "order": 1}
//	  ]
//	}
//
// [WriteJSON] and [ExportJSON] produce it; [ReadJSON] and [ImportJSON] turn
// it back into a [graph.Graph]. Vertices listed without arcs survive the
// round trip as isolated vertices.
//
// # XML Format
//
// [WriteXML] emits the same content as nested elements:
//
//	<graph>
//	  <vertex>a</vertex>
//	  <arc><from>a</from><to>b</to><order>0</order></arc>
//	</graph>
//
// # Prefix Notation
//
// [Prefix] renders the graph as nested calls, e.g. "a(b,c(d))". Children
// appear in ordinal order. A vertex that was already written earlier in the
// traversal is abbreviated to "name()". Cyclic graphs have no prefix form
// and are refused.
//
// # Concurrency
//
// All functions only read the graph and may run concurrently with other
// readers.
package io
