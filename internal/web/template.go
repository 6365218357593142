package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/fan-tach/internal/mqtt"
	"github.com/sweeney/fan-tach/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"mib": func(b uint64) string {
		return fmt.Sprintf("%.1f MiB", float64(b)/(1<<20))
	},
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if not .Config.WSBroker}}<meta http-equiv="refresh" content="5">{{end}}
<title>Fan Tachometers</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.stalled { color: red; font-weight: bold; }
.disabled { color: #888; }
.pending { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Fan Tachometers{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Speed</h2>
<table>
{{range .Fans}}<tr><th>{{.Name}}</th>{{if not .Enabled}}<td class="disabled">disabled</td>{{else if not $.Ready}}<td data-fan="{{.Name}}" class="pending">measuring</td>{{else if eq .RPM 0}}<td data-fan="{{.Name}}" class="stalled">0 rpm</td>{{else}}<td data-fan="{{.Name}}">{{.RPM}} rpm</td>{{end}}</tr>
{{else}}<tr><td>no channels configured</td></tr>
{{end}}</table>

<h2>Sampling</h2>
<table>
<tr><th>Mode</th><td>{{.Config.Mode}}</td></tr>
<tr><th>Window</th><td>{{.Config.WindowMs}}ms</td></tr>
<tr><th>Last interval</th><td id="interval">{{if .Ready}}{{.IntervalMs}}ms{{else}}-{{end}}</td></tr>
<tr><th>Windows</th><td>{{.Windows}}</td></tr>
{{if .Config.PollMs}}<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
{{if .Process}}<tr><th>Process</th><td>{{printf "%.1f" .Process.CPUPercent}}% cpu, {{mib .Process.RSSBytes}}, {{.Process.Threads}} threads</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5.10.1/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Topic}}";
  var dot = document.getElementById("live-dot");
  var intervalEl = document.getElementById("interval");

  function setRPM(el, rpm) {
    el.textContent = rpm + " rpm";
    el.className = rpm === 0 ? "stalled" : "";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.fans || !msg.fans.rpm) {
        return;
      }
      var cells = document.querySelectorAll("td[data-fan]");
      for (var i = 0; i < cells.length; i++) {
        var name = cells[i].getAttribute("data-fan");
        if (name in msg.fans.rpm) {
          setRPM(cells[i], msg.fans.rpm[name]);
        }
      }
      intervalEl.textContent = msg.fans.interval_ms + "ms";
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() and Ready() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
		Topic  string
	}{
		Snapshot: snap,
		Topic:    mqtt.Topic,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	return indexTmpl.Execute(w, data)
}
