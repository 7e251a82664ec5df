package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>LinkedIn2Odoo Uploader API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/events" style="
    position: fixed;
    top: 12px;
    right: 16px;
    z-index: 9999;
    background: #161b22;
    border: 1px solid #30363d;
    border-radius: 6px;
    color: #58a6ff;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
    font-size: 12px;
    font-weight: 500;
    padding: 5px 12px;
    text-decoration: none;
  ">Event Stream Docs →</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Event Stream | LinkedIn2Odoo Uploader</title>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; font-size: 14px; line-height: 1.65; background: #0d1117; color: #c9d1d9; }
    main { max-width: 860px; margin: 0 auto; padding: 24px; }
    a { color: #58a6ff; text-decoration: none; }
    code, pre { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; }
    pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px 16px; overflow-x: auto; }
    table { border-collapse: collapse; width: 100%; }
    td, th { border: 1px solid #30363d; padding: 6px 10px; text-align: left; }
  </style>
</head>
<body>
<main>
  <p><a href="/docs">← REST API</a></p>
  <h1>Event stream</h1>
  <p>Every upload state transition is published as a <code>status</code> event. Two transports carry the same events:</p>
  <table>
    <tr><th>Endpoint</th><th>Transport</th></tr>
    <tr><td><code>GET /api/v1/events</code></td><td>Server-Sent Events</td></tr>
    <tr><td><code>GET /api/v1/events/ws</code></td><td>WebSocket, one JSON text frame per event</td></tr>
  </table>
  <p>Both accept <code>?topics=status</code> to filter by topic. Slow consumers drop events rather than block the uploader.</p>
  <h2>Envelope</h2>
  <pre>{
  "topic": "status",
  "data": {
    "state": "ready",
    "mode": "update",
    "url": "https://www.linkedin.com/in/ada-lovelace",
    "person_id": 42,
    "updated_at": "2026-01-02T15:04:05Z"
  }
}</pre>
  <h2>States</h2>
  <p><code>idle</code> → <code>checking-existence</code> → <code>ready</code> → <code>submitting</code> → <code>success</code> | <code>failed</code>. A failed upload returns to <code>ready</code> with its previous mode.</p>
  <h2>Example</h2>
  <pre>curl -N http://127.0.0.1:8190/api/v1/events?topics=status</pre>
</main>
</body>
</html>`
