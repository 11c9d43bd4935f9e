// Package classify implements nearest-neighbor multi-label classification.
//
// Beans are classified against two small fixed anchor catalogs (categories
// and sentiments): the three anchors nearest the bean's embedding by cosine
// distance become its labels, ties broken by catalog order. This is not a
// trained classifier; the catalogs act as hand-curated anchors and never
// change during operation.
//
// The Engine runs as a batch maintenance pass over beans that have an
// embedding but no labels yet, writing results back through the content
// store's partial merge.
package classify
