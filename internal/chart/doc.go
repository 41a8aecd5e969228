// Package chart turns analysis results into render-ready datasets: it
// classifies metrics against reference bands, ranks probability sets and
// derives the colors and labels a renderer needs. Nothing here draws.
package chart
