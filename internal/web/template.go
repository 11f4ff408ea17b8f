package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/relay-scheduler/internal/logic"
	"github.com/sweeney/relay-scheduler/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
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
	"stateOrUnknown": func(s logic.State) string {
		if s == "" {
			return "UNKNOWN"
		}
		return string(s)
	},
	"stateClass": func(s logic.State) string {
		switch s {
		case logic.StateOn:
			return "on"
		case logic.StateOff:
			return "off"
		}
		return "unknown"
	},
	"mode": func(c logic.ActuatorConfig) string {
		switch {
		case c.Mode == logic.ModeNone:
			return "none"
		case c.Mode == logic.ModeManual && c.Manual != nil:
			return fmt.Sprintf("MANUAL %s-%s", c.Manual.Start, c.Manual.End)
		case c.Mode.Solar() && c.OffsetMinutes != 0:
			return fmt.Sprintf("%s (%d min)", c.Mode, c.OffsetMinutes)
		}
		return string(c.Mode)
	},
	"weekday": func(d int) string {
		if d == logic.EveryDay {
			return "every day"
		}
		return logic.WeekdayName(d)
	},
	"slots": func(p logic.SpecialPeriod) string {
		out := ""
		for d, t := range p.Daily {
			if !t.IsSet() {
				continue
			}
			if out != "" {
				out += " "
			}
			out += logic.WeekdayName(d) + " " + t.String()
		}
		if out == "" {
			return "no rings"
		}
		return out
	},
	"rfc3339": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Relay Scheduler</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Relay Scheduler<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Relays</h2>
<table>
<tr><th>Lighting</th><td id="lighting-state" class="{{stateClass .States.Lighting}}">{{stateOrUnknown .States.Lighting}}</td></tr>
<tr><th>Irrigation</th><td id="irrigation-state" class="{{stateClass .States.Irrigation}}">{{stateOrUnknown .States.Irrigation}}</td></tr>
<tr><th>Bell</th><td id="bell-state" class="{{stateClass .States.Bell}}">{{stateOrUnknown .States.Bell}}</td></tr>
<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Schedule</h2>
<table>
<tr><th>Lighting mode</th><td>{{mode .Lighting}}</td></tr>
<tr><th>Irrigation mode</th><td>{{mode .Irrigation}}</td></tr>
<tr><th>Sunrise / sunset</th><td>{{.Sun.Sunrise}} / {{.Sun.Sunset}}</td></tr>
<tr><th>Next bell</th><td id="next-bell">{{.NextBell}}{{if .NextBell.IsSet}} (in {{.NextBellIn}} min){{end}}</td></tr>
<tr><th>Last bell</th><td>{{rfc3339 .LastRing}}{{if .LastRingSource}} ({{.LastRingSource}}){{end}}</td></tr>
<tr><th>Last reload</th><td>{{rfc3339 .LastReload}}</td></tr>
</table>

<h2>Bells</h2>
<table>
{{range .Bells.Normal}}<tr><th>{{weekday .Weekday}}</th><td>{{.Time}}</td></tr>
{{else}}<tr><th>Normal</th><td>none</td></tr>
{{end}}{{range .Bells.Special}}<tr><th>{{if .Label}}{{.Label}}{{else}}special{{end}} {{.Start}}&ndash;{{.End}}</th><td>{{slots .}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Queued offline</th><td id="mqtt-buffered">{{.MQTTBuffered}}</td></tr>
<tr><th>Topic root</th><td>{{.Config.TopicRoot}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Lighting ON</th><td>{{.Counts.LightingOn}}</td></tr>
<tr><th>Lighting OFF</th><td>{{.Counts.LightingOff}}</td></tr>
<tr><th>Irrigation ON</th><td>{{.Counts.IrrigationOn}}</td></tr>
<tr><th>Irrigation OFF</th><td>{{.Counts.IrrigationOff}}</td></tr>
<tr><th>Bell rings</th><td>{{.Counts.BellRings}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Instance</th><td>{{.InstanceID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Ring</th><td>{{.Config.RingMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Location</th><td>{{.Config.Latitude}}, {{.Config.Longitude}} ({{.Config.Timezone}})</td></tr>
<tr><th>Pins</th><td>lighting {{.Config.Pins.Lighting}}, irrigation {{.Config.Pins.Irrigation}}, bell {{.Config.Pins.Bell}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var els = {
    lighting: document.getElementById("lighting-state"),
    irrigation: document.getElementById("irrigation-state"),
    bell: document.getElementById("bell-state")
  };
  var next = document.getElementById("next-bell");
  var buffered = document.getElementById("mqtt-buffered");

  function setState(el, state) {
    el.textContent = state;
    el.className = state === "ON" ? "on" : state === "OFF" ? "off" : "unknown";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        setState(els.lighting, s.lighting.state);
        setState(els.irrigation, s.irrigation.state);
        setState(els.bell, s.bell.state);
        next.textContent = s.bell.next === "--:--" ? s.bell.next : s.bell.next + " (in " + s.bell.next_in_minutes + " min)";
        buffered.textContent = s.mqtt.buffered;
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
