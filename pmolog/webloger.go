package pmolog

import (
	"container/ring"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const bufferSize = 1000

// Broker keeps the last log entries and streams new ones to the connected
// browsers.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}

	bufferMutex sync.Mutex
	logBuffer   *ring.Ring
}

func NewBroker(size int) *Broker {
	if size <= 0 {
		size = bufferSize
	}
	return &Broker{
		clients:   make(map[chan string]struct{}),
		logBuffer: ring.New(size),
	}
}

// ---------- Hook for Logrus ----------

func (b *Broker) Levels() []logrus.Level { return logrus.AllLevels }

func (b *Broker) Fire(entry *logrus.Entry) error {
	msg := map[string]any{
		"time":    entry.Time.Format(time.RFC3339),
		"level":   entry.Level.String(),
		"content": entry.Message,
	}
	if len(entry.Data) > 0 {
		fields := make(map[string]string, len(entry.Data))
		for k, v := range entry.Data {
			fields[k] = fmt.Sprint(v)
		}
		msg["fields"] = fields
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	b.publish(string(data))
	return nil
}

func (b *Broker) publish(line string) {
	b.bufferMutex.Lock()
	b.logBuffer.Value = line
	b.logBuffer = b.logBuffer.Next()
	b.bufferMutex.Unlock()

	b.mu.RLock()
	for ch := range b.clients {
		select {
		case ch <- line:
		default: // skip if full
		}
	}
	b.mu.RUnlock()
}

// Buffered returns the retained entries, oldest first.
func (b *Broker) Buffered() []string {
	b.bufferMutex.Lock()
	defer b.bufferMutex.Unlock()

	var out []string
	b.logBuffer.Do(func(v any) {
		if v != nil {
			out = append(out, v.(string))
		}
	})
	return out
}

func (b *Broker) subscribe() chan string {
	ch := make(chan string, 20)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
}

// ---------- SSE Handler ----------

func (b *Broker) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	for _, line := range b.Buffered() {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", line)
	}
	flusher.Flush()

	for {
		select {
		case msg := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// ---------- HTML ----------

var indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>SSDP Logs</title>
  <style>
    body { background:#0d1117; color:#e6edf3; font-family: sans-serif; margin:0; padding:20px; }
    h1 { color:#58a6ff; border-bottom:1px solid #30363d; padding-bottom:10px; }
    #logs { height:70vh; overflow-y:auto; background:#161b22; border:1px solid #30363d; border-radius:8px; padding:15px; font-family: monospace; }
    .log { margin:4px 0; padding:4px 10px; border-left:4px solid; }
    .log.error   { border-color:#f85149; }
    .log.warning { border-color:#d29922; }
    .log.info    { border-color:#58a6ff; }
    .log.debug, .log.trace { border-color:#8957e5; }
    .time { color:#7d8590; font-size:12px; margin-right:10px; }
  </style>
</head>
<body>
  <h1>📝 Real-time logs</h1>
  <div id="logs"></div>
  <script>
    const logs=document.getElementById('logs');
    const es=new EventSource('/log-sse');
    es.addEventListener('message', e=>{
      const d=JSON.parse(e.data);
      const line=document.createElement('div');
      line.className='log '+d.level;
      const t=document.createElement('span');
      t.className='time';
      t.textContent=new Date(d.time).toLocaleTimeString();
      line.appendChild(t);
      line.appendChild(document.createTextNode(d.content));
      logs.appendChild(line);
      if(logs.children.length>500) logs.removeChild(logs.firstChild);
      logs.scrollTop=logs.scrollHeight;
    });
  </script>
</body>
</html>`

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// LoggerWeb hooks b into logrus and mounts the viewer on /log.
func LoggerWeb(mux *http.ServeMux, b *Broker) {
	logrus.AddHook(b)
	mux.HandleFunc("/log", indexHandler)
	mux.HandleFunc("/log-sse", b.ServeSSE)
	logrus.Info("✅ Web logger connected")
}
