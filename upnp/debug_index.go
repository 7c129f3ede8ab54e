package upnp

import (
	"fmt"
	"html"
	"net/http"
)

func (s *Server) ServeDebugIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>UPnP Debug Interface</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    h1 { border-bottom: 1px solid #ccc; }
    a { color: #007bff; text-decoration: none; }
    a:hover { text-decoration: underline; }
  </style>
</head>
<body>
  <h1>Host %s</h1>
  <ul>
`, html.EscapeString(s.Name()))

	for _, d := range s.Devices() {
		fmt.Fprintf(w, "    <li><a href=\"%s\">%s</a> %s (%d embedded)</li>\n",
			html.EscapeString(s.namespace.DescriptorPath(d)),
			html.EscapeString(d.FriendlyName()),
			html.EscapeString(d.UDN()),
			len(d.EmbeddedDevices()),
		)
	}

	fmt.Fprint(w, `  </ul>
</body>
</html>
`)
}
