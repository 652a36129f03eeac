package preview

// page.go - the preview page served on GET /

import (
	"bytes"
	"html/template"

	"github.com/starbridge-labs/starbridge/pkg/adapter"
)

type pageData struct {
	Title       string
	DataDir     string
	GeneratedAt string
	Tables      []tableView
}

type tableView struct {
	Name     string
	RowCount int64
	Columns  []columnView
}

type columnView struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// newTableView converts inferred table metadata into its page view.
func newTableView(name string, rowCount int64, columns []adapter.Column) tableView {
	tv := tableView{
		Name:     name,
		RowCount: rowCount,
		Columns:  make([]columnView, 0, len(columns)),
	}
	for _, col := range columns {
		tv.Columns = append(tv.Columns, columnView{
			Name:       col.Name,
			Type:       col.Type,
			Nullable:   col.Nullable,
			PrimaryKey: col.PrimaryKey,
		})
	}
	return tv
}

// renderPage executes the page template against data.
func renderPage(data pageData) ([]byte, error) {
	tmpl, err := template.New("preview").Parse(pageTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pageTemplate renders the diagram client-side with Mermaid so the raw
// document stays untouched by HTML escaping; the page fetches it from
// /erd.mermaid and listens on /events for reload pings.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0; color: #1f2933; background: #f9fafb; }
  header { padding: 14px 24px; background: #fff; border-bottom: 1px solid #e4e7eb; display: flex; justify-content: space-between; align-items: baseline; }
  header h1 { font-size: 17px; margin: 0; }
  header .meta { color: #7b8794; font-size: 13px; }
  main { padding: 24px; max-width: 1100px; margin: 0 auto; }
  section { margin-bottom: 36px; }
  h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 0.06em; color: #52606d; }
  h3 { font-size: 15px; margin-bottom: 6px; }
  #diagram { background: #fff; border: 1px solid #e4e7eb; border-radius: 6px; padding: 16px; overflow-x: auto; }
  table { border-collapse: collapse; width: 100%; font-size: 14px; background: #fff; }
  th, td { text-align: left; padding: 6px 12px; border-bottom: 1px solid #e4e7eb; }
  th { color: #52606d; font-weight: 600; }
  .rows { color: #7b8794; font-weight: normal; font-size: 13px; }
  .pk { color: #2186eb; font-weight: 600; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <span class="meta">data: {{.DataDir}} &middot; generated {{.GeneratedAt}}</span>
</header>
<main>
  <section>
    <h2>Entity Relationships</h2>
    <div id="diagram">Rendering&hellip;</div>
  </section>
  <section>
    <h2>Catalog</h2>
    {{range .Tables}}
    <h3>{{.Name}} <span class="rows">({{.RowCount}} rows)</span></h3>
    <table>
      <thead><tr><th>Column</th><th>Type</th><th>Nullable</th><th>Key</th></tr></thead>
      <tbody>
        {{range .Columns}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{.Type}}</td>
          <td>{{if .Nullable}}YES{{else}}NO{{end}}</td>
          <td>{{if .PrimaryKey}}<span class="pk">PK</span>{{end}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</main>
<script type="module">
  import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs';
  mermaid.initialize({ startOnLoad: false, theme: 'neutral' });
  const source = await fetch('/erd.mermaid').then(function (res) { return res.text(); });
  const rendered = await mermaid.render('erd', source);
  document.getElementById('diagram').innerHTML = rendered.svg;
</script>
<script>
  (function () {
    var es = new EventSource('/events');
    es.onmessage = function (e) {
      if (e.data === 'reload') {
        window.location.reload();
      }
    };
    es.onerror = function () {
      setTimeout(function () { window.location.reload(); }, 1000);
    };
  })();
</script>
</body>
</html>
`
