package channels

import (
	"html/template"

	"github.com/quantumx/quantumx/pkg/chat"
)

type pageMessage struct {
	Role string
	Text string
	HTML template.HTML
}

type pageData struct {
	Name         string
	Greeting     string
	AuthEnabled  bool
	Messages     []pageMessage
	QuickActions []chat.QuickAction
	CannedRules  []chat.CannedRule
	OfflineReply string
}

type loginData struct {
	Name  string
	Error string
}

var chatPage = template.Must(template.New("chat").Parse(chatPageHTML))

var loginPage = template.Must(template.New("login").Parse(loginPageHTML))

const sharedCSS = `
:root{
  --bg:#0f1117;--panel:#161822;--input:#12141d;--border:#252836;
  --accent:#6c5ce7;--accent-hover:#5a4bd1;--text:#e8e6f0;--muted:#8b8a97;
  --user:linear-gradient(135deg,#6c5ce7 0%,#a855f7 100%);--bot:#1c1f2e;
  --ok:#34d399;--warn:#fbbf24;--error:#f87171;
}
html[data-theme="light"]{
  --bg:#f5f5fa;--panel:#ffffff;--input:#f0f0f6;--border:#dcdce6;
  --text:#1d1b26;--muted:#6b6a75;--bot:#ececf4;
}
*{box-sizing:border-box;margin:0;padding:0}
html,body{height:100%}
body{font-family:system-ui,-apple-system,sans-serif;background:var(--bg);color:var(--text)}
`

const chatPageHTML = `<!DOCTYPE html>
<html lang="pt-BR" data-theme="dark">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Name}}</title>
<style>` + sharedCSS + `
body{display:flex;flex-direction:column;overflow:hidden}
#header{padding:14px 20px;background:var(--panel);border-bottom:1px solid var(--border);display:flex;align-items:center;gap:12px}
#header h1{font-size:16px;font-weight:600}
#status{font-size:12px;color:var(--ok)}
#status.offline{color:var(--warn)}
.header-right{margin-left:auto;display:flex;gap:8px;align-items:center}
.header-right button,.header-right a{background:none;border:1px solid var(--border);border-radius:8px;color:var(--muted);padding:6px 10px;font-size:12px;cursor:pointer;text-decoration:none}
#chat-window{flex:1;overflow-y:auto;padding:20px;display:flex;flex-direction:column;gap:12px}
.msg{max-width:72%;padding:10px 14px;border-radius:14px;line-height:1.6;font-size:14px;word-wrap:break-word}
.msg.user{align-self:flex-end;background:var(--user);color:#fff;white-space:pre-wrap}
.msg.bot{align-self:flex-start;background:var(--bot);border:1px solid var(--border)}
.msg.bot.fallback{border-color:var(--warn)}
.msg img{display:block;max-width:100%;border-radius:10px;margin-top:8px}
.msg code{background:var(--input);padding:1px 5px;border-radius:4px}
.msg ul{padding-left:18px}
#quick{display:flex;flex-wrap:wrap;gap:8px;padding:0 20px 10px}
#quick button{background:var(--panel);border:1px solid var(--border);border-radius:16px;color:var(--text);padding:6px 12px;font-size:12px;cursor:pointer}
#chat-form{display:flex;gap:10px;padding:14px 20px;background:var(--panel);border-top:1px solid var(--border)}
#message{flex:1;padding:10px 14px;border:1px solid var(--border);border-radius:10px;background:var(--input);color:var(--text);font-size:14px;outline:none}
#message:focus{border-color:var(--accent)}
#send{padding:0 18px;background:var(--accent);color:#fff;border:none;border-radius:10px;cursor:pointer}
#send:hover{background:var(--accent-hover)}
#send:disabled{opacity:.4;cursor:not-allowed}
@media(max-width:640px){.msg{max-width:88%}}
</style>
</head>
<body>
<div id="header">
  <h1>{{.Name}}</h1>
  <span id="status">Online</span>
  <div class="header-right">
    <button id="theme-toggle" type="button" aria-label="Alternar tema">Tema</button>
    {{if .AuthEnabled}}<a href="/logout">Sair</a>{{end}}
  </div>
</div>
<div id="chat-window">
  <div class="msg bot">{{.Greeting}}</div>
  {{range .Messages}}{{if eq .Role "user"}}<div class="msg user">{{.Text}}</div>{{else}}<div class="msg bot">{{.HTML}}</div>{{end}}
  {{end}}
</div>
<div id="quick">
  {{range .QuickActions}}<button type="button" data-prompt="{{.Prompt}}">{{.Label}}</button>{{end}}
</div>
<form id="chat-form" autocomplete="off">
  <input id="message" name="message" placeholder="Pergunte qualquer coisa..." aria-label="Mensagem">
  <button id="send" type="submit">Enviar</button>
</form>
<script>
const THEME_KEY = "qx-theme";
const CANNED = {{.CannedRules}};
const OFFLINE_REPLY = {{.OfflineReply}};

const form = document.getElementById("chat-form");
const input = document.getElementById("message");
const sendBtn = document.getElementById("send");
const chatWindow = document.getElementById("chat-window");
const statusLabel = document.getElementById("status");

function applyTheme(theme) {
  document.documentElement.dataset.theme = theme === "light" ? "light" : "dark";
}
applyTheme(localStorage.getItem(THEME_KEY));
document.getElementById("theme-toggle").addEventListener("click", () => {
  const next = document.documentElement.dataset.theme === "light" ? "dark" : "light";
  localStorage.setItem(THEME_KEY, next);
  applyTheme(next);
});

function detectMode(text) {
  const lowered = text.toLowerCase();
  return lowered.includes("desenhe") || lowered.includes("imagem") ? "image" : "text";
}

function containsWord(text, kw) {
  const escaped = kw.replace(/[.*+?^${}()|[\]\\]/g, "\\$&");
  return new RegExp("(^|[^\\p{L}])" + escaped + "($|[^\\p{L}])", "u").test(text);
}

function cannedReply(text) {
  const lowered = text.toLowerCase();
  for (const rule of CANNED) {
    if (rule.keywords.some((kw) => containsWord(lowered, kw))) return rule.reply;
  }
  return OFFLINE_REPLY;
}

function setStatus(online) {
  statusLabel.textContent = online ? "Online" : "Offline · resposta local";
  statusLabel.classList.toggle("offline", !online);
}

function appendMessage(text, cls, html) {
  const bubble = document.createElement("div");
  bubble.className = "msg " + cls;
  if (html) bubble.innerHTML = html; else bubble.textContent = text;
  chatWindow.appendChild(bubble);
  chatWindow.scrollTop = chatWindow.scrollHeight;
  return bubble;
}

function appendImage(bubble, b64, mime) {
  const img = document.createElement("img");
  img.alt = "Imagem gerada";
  img.src = "data:" + (mime || "image/png") + ";base64," + b64;
  bubble.appendChild(img);
  chatWindow.scrollTop = chatWindow.scrollHeight;
}

async function send(message) {
  appendMessage(message, "user");
  input.value = "";
  sendBtn.disabled = true;

  const formData = new FormData();
  formData.append("message", message);
  formData.append("mode", detectMode(message));

  try {
    const response = await fetch("/chat", { method: "POST", body: formData });
    if (response.status === 401) { window.location.href = "/login"; return; }
    if (!response.ok) throw new Error(response.statusText);
    const data = await response.json();
    const bubble = appendMessage(data.response || "Sem resposta no momento.", "bot", data.response_html);
    if (data.image_base64) appendImage(bubble, data.image_base64, data.image_mime);
    setStatus(true);
  } catch (err) {
    appendMessage(cannedReply(message), "bot fallback");
    setStatus(false);
  } finally {
    sendBtn.disabled = false;
    input.focus();
  }
}

form.addEventListener("submit", (event) => {
  event.preventDefault();
  const message = input.value.trim();
  if (!message) return;
  send(message);
});

document.querySelectorAll("#quick button").forEach((btn) => {
  btn.addEventListener("click", () => {
    input.value = btn.dataset.prompt;
    input.focus();
  });
});

chatWindow.scrollTop = chatWindow.scrollHeight;
input.focus();
</script>
</body>
</html>`

const loginPageHTML = `<!DOCTYPE html>
<html lang="pt-BR" data-theme="dark">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Name}} - Login</title>
<style>` + sharedCSS + `
body{display:flex;align-items:center;justify-content:center}
.card{width:100%;max-width:360px;padding:36px 28px;background:var(--panel);border:1px solid var(--border);border-radius:16px}
.card h1{font-size:20px;text-align:center;margin-bottom:24px}
.error{padding:10px 14px;margin-bottom:16px;border:1px solid var(--error);border-radius:8px;font-size:13px;color:var(--error)}
.field{margin-bottom:14px}
.field label{display:block;font-size:13px;color:var(--muted);margin-bottom:6px}
.field input{width:100%;padding:10px 12px;background:var(--input);border:1px solid var(--border);border-radius:8px;color:var(--text);font-size:14px}
button{width:100%;padding:11px;margin-top:6px;background:var(--accent);color:#fff;border:none;border-radius:10px;font-size:14px;cursor:pointer}
</style>
<script>document.documentElement.dataset.theme = localStorage.getItem("qx-theme") === "light" ? "light" : "dark";</script>
</head>
<body>
<form class="card" method="POST" action="/login">
  <h1>{{.Name}}</h1>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  <div class="field"><label for="username">Usuário</label><input id="username" name="username" autocomplete="username" required autofocus></div>
  <div class="field"><label for="password">Senha</label><input id="password" name="password" type="password" autocomplete="current-password" required></div>
  <button type="submit">Entrar</button>
</form>
</body>
</html>`
