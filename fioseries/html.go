// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fioseries

import (
	"io"

	"github.com/google/safehtml/template"
)

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{- range .Matrices}}
<h2>{{.Title}}</h2>
<table class='fio'>
<tr><th>{{range .Columns}}<th>{{.}}{{end}}<th>geomean
{{- range .Rows}}
<tr><td class='label'>{{.Label}}{{range .Cells}}<td>{{.}}{{end}}<td>{{.GeoMean}}
{{- end}}
</table>
{{- end}}
{{- range .Images}}
<p><img src="{{.}}"></p>
{{- end}}
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// A Report is the input to WriteHTML.
type Report struct {
	Title  string
	Groups []*Group

	// Images are chart paths, relative to the report, to embed
	// after the tables.
	Images []string
}

// WriteHTML writes r to w as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	data := struct {
		Title    string
		Matrices []*Matrix
		Images   []string
	}{Title: r.Title, Images: r.Images}
	if data.Title == "" {
		data.Title = "fio results"
	}
	for _, g := range r.Groups {
		data.Matrices = append(data.Matrices, g.Matrix())
	}
	return reportTemplate.Execute(w, data)
}
