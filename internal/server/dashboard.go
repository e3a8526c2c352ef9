package server

import (
	"html/template"
	"net/http"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title string
	}{
		Title: "signalscope",
	}
	if err := dashboardTemplate.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard")
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
    <style>
        :root {
            --bg-primary: #0d1117;
            --bg-secondary: #161b22;
            --border-color: #30363d;
            --text-primary: #f0f6fc;
            --text-secondary: #8b949e;
            --accent-blue: #3b82f6;
            --accent-red: #ef4444;
        }
        * { box-sizing: border-box; margin: 0; }
        body {
            background: var(--bg-primary);
            color: var(--text-primary);
            font-family: -apple-system, "Segoe UI", sans-serif;
            display: grid;
            grid-template-columns: 260px 1fr;
            height: 100vh;
        }
        aside {
            background: var(--bg-secondary);
            border-right: 1px solid var(--border-color);
            padding: 16px;
            overflow-y: auto;
        }
        main { padding: 16px; display: flex; flex-direction: column; gap: 12px; }
        h1 { font-size: 16px; margin-bottom: 12px; }
        h2 { font-size: 13px; color: var(--text-secondary); margin: 14px 0 6px; }
        button {
            background: var(--bg-primary);
            color: var(--text-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 6px 12px;
            margin-right: 4px;
            cursor: pointer;
        }
        button:hover { border-color: var(--accent-blue); }
        select, input { width: 100%; margin: 4px 0 10px; }
        label { font-size: 12px; color: var(--text-secondary); }
        #chart-wrap { flex: 1; min-height: 0; background: var(--bg-secondary);
            border: 1px solid var(--border-color); border-radius: 8px; padding: 12px; }
        #log {
            height: 180px; overflow-y: auto; font-family: monospace; font-size: 12px;
            background: var(--bg-secondary); border: 1px solid var(--border-color);
            border-radius: 8px; padding: 8px; white-space: pre;
        }
        #log .entry { color: var(--accent-red); }
    </style>
</head>
<body>
    <aside>
        <h1>signalscope</h1>
        <h2>Simulation</h2>
        <button id="start">Start</button>
        <button id="stop">Stop</button>
        <button id="reset">Reset</button>
        <h2>Algorithm</h2>
        <select id="method">
            <option value="zscore">Z-Score</option>
            <option value="mad">Median Absolute Deviation</option>
            <option value="iforest">Isolation Forest</option>
        </select>
        <label>Window size: <span id="capacity-val"></span></label>
        <input type="range" id="capacity" min="10" max="500" step="10">
        <div id="param-zscore">
            <label>Z-Score threshold: <span id="zscore-val"></span></label>
            <input type="range" id="zscore" min="1" max="5" step="0.1">
        </div>
        <div id="param-mad" hidden>
            <label>MAD threshold: <span id="mad-val"></span></label>
            <input type="range" id="mad" min="1" max="10" step="0.1">
        </div>
        <div id="param-iforest" hidden>
            <label>Contamination: <span id="iforest-val"></span></label>
            <input type="range" id="iforest" min="0.01" max="0.5" step="0.01">
        </div>
    </aside>
    <main>
        <div id="chart-wrap"><canvas id="chart"></canvas></div>
        <div id="log">No anomalies detected yet.</div>
    </main>
    <script>
    const api = (path, opts) => fetch('/api/v1' + path, opts);

    const chart = new Chart(document.getElementById('chart'), {
        type: 'line',
        data: { datasets: [
            { label: 'Value', data: [], borderColor: '#3b82f6', borderWidth: 2,
              pointRadius: 0, tension: 0.1 },
            { label: 'Anomaly', data: [], type: 'scatter', pointStyle: 'crossRot',
              pointRadius: 8, borderColor: '#ef4444', borderWidth: 2 }
        ]},
        options: {
            animation: false, maintainAspectRatio: false, parsing: false,
            scales: {
                x: { type: 'linear', title: { display: true, text: 'Time Step' } },
                y: { title: { display: true, text: 'Value' } }
            }
        }
    });

    function render(state) {
        chart.data.datasets[0].data = state.values.map((v, i) => ({x: i, y: v}));
        chart.data.datasets[1].data = (state.anomalies || []).map(
            a => ({x: a.time_step, y: a.value}));
        chart.update('none');

        const log = document.getElementById('log');
        if (state.log && state.log.length) {
            log.innerHTML = state.log.map(
                e => '<div class="entry">' + e + '</div>').join('');
        } else {
            log.textContent = 'No anomalies detected yet.';
        }
    }

    function showParams(method) {
        for (const m of ['zscore', 'mad', 'iforest']) {
            document.getElementById('param-' + m).hidden = (m !== method);
        }
    }

    function bindControls(settings) {
        const set = (id, value) => {
            document.getElementById(id).value = value;
            document.getElementById(id + '-val').textContent = value;
        };
        document.getElementById('method').value = settings.method;
        showParams(settings.method);
        set('capacity', settings.window_capacity);
        set('zscore', settings.zscore_threshold);
        set('mad', settings.mad_threshold);
        set('iforest', settings.contamination);
    }

    const put = body => api('/settings', {
        method: 'PUT',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify(body)
    });

    document.getElementById('start').onclick = () => api('/sim/start', {method: 'POST'});
    document.getElementById('stop').onclick = () => api('/sim/stop', {method: 'POST'});
    document.getElementById('reset').onclick = () =>
        api('/sim/reset', {method: 'POST'}).then(() =>
            api('/state').then(r => r.json()).then(render));
    document.getElementById('method').onchange = e => {
        showParams(e.target.value);
        put({method: e.target.value});
    };
    const slider = (id, key, parse) => {
        document.getElementById(id).oninput = e => {
            document.getElementById(id + '-val').textContent = e.target.value;
            put({[key]: parse(e.target.value)});
        };
    };
    slider('capacity', 'window_capacity', v => parseInt(v, 10));
    slider('zscore', 'zscore_threshold', parseFloat);
    slider('mad', 'mad_threshold', parseFloat);
    slider('iforest', 'contamination', parseFloat);

    api('/state').then(r => r.json()).then(s => {
        bindControls(s.settings);
        render(s);
    });

    function connect() {
        const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        const sock = new WebSocket(proto + '//' + location.host + '/api/v1/ws');
        sock.onmessage = e => {
            const msg = JSON.parse(e.data);
            if (msg.type === 'tick') render(msg.state);
        };
        sock.onclose = () => setTimeout(connect, 1000);
    }
    connect();
    </script>
</body>
</html>
`
