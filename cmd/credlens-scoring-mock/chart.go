// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Chart dimensions. Small enough to keep test artifacts cheap, large
// enough to be recognizable when opened.
const (
	chartWidth  = 640
	chartHeight = 360
)

var (
	chartBackground = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	chartAxis       = color.RGBA{R: 90, G: 90, B: 96, A: 255}
	barPositive     = color.RGBA{R: 86, G: 156, B: 214, A: 255}
	barNegative     = color.RGBA{R: 214, G: 104, B: 86, A: 255}
)

// renderBarChart encodes a horizontal bar chart of the given values as
// a PNG. Values may be negative; bars extend left or right of a center
// axis. The rendering is fully deterministic for a given input.
func renderBarChart(values []float64) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fill(canvas, canvas.Bounds(), chartBackground)

	maxMagnitude := 0.0
	for _, value := range values {
		if magnitude := abs(value); magnitude > maxMagnitude {
			maxMagnitude = magnitude
		}
	}
	if maxMagnitude == 0 {
		maxMagnitude = 1
	}

	center := chartWidth / 2
	fill(canvas, image.Rect(center, 0, center+1, chartHeight), chartAxis)

	rows := len(values)
	if rows == 0 {
		rows = 1
	}
	rowHeight := chartHeight / rows
	barHeight := rowHeight * 3 / 4
	if barHeight < 1 {
		barHeight = 1
	}

	for index, value := range values {
		top := index*rowHeight + (rowHeight-barHeight)/2
		length := int(abs(value) / maxMagnitude * float64(center-8))
		if value >= 0 {
			fill(canvas, image.Rect(center+1, top, center+1+length, top+barHeight), barPositive)
		} else {
			fill(canvas, image.Rect(center-length, top, center, top+barHeight), barNegative)
		}
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, canvas); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func fill(canvas *image.RGBA, rect image.Rectangle, shade color.RGBA) {
	rect = rect.Intersect(canvas.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			canvas.SetRGBA(x, y, shade)
		}
	}
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
