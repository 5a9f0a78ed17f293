package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the executive dashboard shell. All data arrives through
// the datastar SSE endpoints after load; every filter interaction carries
// the current selection in the request, so the page holds no filter state
// the server ever reads implicitly.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const refreshAction = "@get(`/sse/refresh-all?start=${$start}&end=${$end}&region=${$region}&category=${$category}`)"

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Executive Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1f2430; }
header { background: #fff; padding: 1rem 2rem; border-bottom: 1px solid #e3e6eb; }
header h1 { margin: 0; font-size: 1.4rem; }
header p { margin: 0.2rem 0 0; color: #6b7280; font-size: 0.9rem; }
main { padding: 1.5rem 2rem; max-width: 1100px; margin: 0 auto; }
.filters { display: flex; gap: 0.75rem; flex-wrap: wrap; align-items: flex-end; background: #fff; padding: 1rem; border-radius: 8px; margin-bottom: 1.5rem; }
.filters label { display: flex; flex-direction: column; font-size: 0.8rem; color: #6b7280; gap: 0.25rem; }
.filters input, .filters select { padding: 0.4rem; border: 1px solid #d1d5db; border-radius: 6px; }
.filters button { padding: 0.5rem 1.2rem; background: #2563eb; color: #fff; border: none; border-radius: 6px; cursor: pointer; }
.filter-error { color: #b91c1c; font-size: 0.85rem; min-height: 1.2rem; }
.kpi-row { display: flex; gap: 1rem; margin-bottom: 1.5rem; }
.kpi-card { flex: 1; background: #fff; border-radius: 8px; padding: 1rem; display: flex; flex-direction: column; gap: 0.3rem; }
.kpi-label { color: #6b7280; font-size: 0.8rem; }
.kpi-card strong { font-size: 1.5rem; }
.modern-table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; }
.modern-table th, .modern-table td { text-align: left; padding: 0.6rem 0.9rem; border-bottom: 1px solid #eef0f3; }
.modern-table th { background: #f9fafb; color: #6b7280; font-size: 0.8rem; text-transform: uppercase; }
section h2 { font-size: 1.05rem; margin: 1.5rem 0 0.75rem; }
</style>
</head>
<body
  data-signals="{start: '', end: '', region: '', category: ''}"
  data-on-load="` + refreshAction + `">
<header>
<h1>Executive Dashboard</h1>
<p>Sales summary, regional breakdown and monthly trend</p>
</header>
<main>
<div class="filters">
<label>Start date<input type="date" data-bind-start/></label>
<label>End date<input type="date" data-bind-end/></label>
<label>Region<input type="text" placeholder="All regions" data-bind-region/></label>
<label>Category<input type="text" placeholder="All categories" data-bind-category/></label>
<button data-on-click="` + refreshAction + `">Apply</button>
</div>
<div id="filter-error" class="filter-error"></div>
<section>
<h2>Key Metrics</h2>
<div id="kpi-row" class="kpi-row"></div>
</section>
<section>
<h2>Revenue by Region</h2>
<div id="breakdown-content"></div>
</section>
</main>
</body>
</html>`
