package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func printEpoch(epoch int, trainLoss, trainAcc, valLoss, valAcc float64, elapsed time.Duration) {
	fmt.Printf("Epoch %d - TrainLoss: %.4f, TrainAcc: %.4f, ValLoss: %.4f, ValAcc: %.4f, Time: %v\n",
		epoch, trainLoss, trainAcc, valLoss, valAcc, elapsed)
}

// asciiPlot draws a crude vertical bar chart of values (0..1).
func asciiPlot(values []float64) {
	const height = 10 // number of text rows
	n := len(values)
	if n == 0 {
		fmt.Println("no data to plot")
		return
	}
	for row := height; row >= 1; row-- {
		threshold := float64(row) / float64(height)
		for _, v := range values {
			if v >= threshold {
				fmt.Print("█")
			} else {
				fmt.Print(" ")
			}
		}
		fmt.Println()
	}
	fmt.Println(strings.Repeat("─", n))
	for i := range values {
		if i%5 == 0 {
			fmt.Print(strconv.Itoa(i % 10))
		} else {
			fmt.Print(" ")
		}
	}
	fmt.Println()
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// WriteTrainingCurves renders loss/accuracy histories to a standalone HTML
// page.
func WriteTrainingCurves(path string, report *TrainReport) error {
	epochs := make([]string, len(report.TrainLoss))
	for i := range epochs {
		epochs[i] = strconv.Itoa(i)
	}

	loss := charts.NewLine()
	loss.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Loss per epoch"}),
	)
	loss.SetXAxis(epochs).
		AddSeries("train loss", lineData(report.TrainLoss)).
		AddSeries("val loss", lineData(report.ValLoss))

	acc := charts.NewLine()
	acc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Accuracy per epoch"}),
	)
	acc.SetXAxis(epochs).
		AddSeries("train acc", lineData(report.TrainAcc)).
		AddSeries("val acc", lineData(report.ValAcc))

	page := components.NewPage()
	page.AddCharts(loss, acc)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
