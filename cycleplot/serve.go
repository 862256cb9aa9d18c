package main

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
)

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!doctype html>
<html lang=en>
<head>
<meta charset=utf-8>
<meta http-equiv="refresh" content="5">
<title>Cycle census</title>
</head>
<body>
{{range .}}<img src="/charts/{{.}}" alt="{{.}}">
{{end}}</body>
</html>
`))

// svgNames returns the base names of the SVG files among the plotted files.
func svgNames(files []string) []string {
	var names []string
	for _, f := range files {
		if strings.HasSuffix(f, ".svg") {
			names = append(names, filepath.Base(f))
		}
	}
	return names
}

func galleryHandler(outDir string, files []string) http.Handler {
	names := svgNames(files)
	mux := http.NewServeMux()
	mux.Handle("/charts/", http.StripPrefix("/charts/", http.FileServer(http.Dir(outDir))))
	mux.HandleFunc("/view", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := galleryTemplate.Execute(w, names); err != nil {
			dpLogger.Errorln("rendering gallery:", err)
		}
	})
	return mux
}

// serveCharts blocks serving the gallery at addr/view.
func serveCharts(addr, outDir string, files []string) error {
	dpLogger.Infof("serving charts at http://%s/view", addr)
	return http.ListenAndServe(addr, galleryHandler(outDir, files))
}
