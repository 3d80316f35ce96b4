package portal

// setupPage is the portal's setup form. Deliberately self-contained: no
// external assets, since the client may have no internet access while joined
// to the setup AP.
const setupPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>WiFi Setup</title>
<style>
body { font-family: sans-serif; max-width: 420px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.3em; }
label { display: block; margin-top: 1em; }
input { width: 100%; padding: 0.5em; box-sizing: border-box; }
button { margin-top: 1.5em; padding: 0.6em 1.2em; }
#msg { margin-top: 1em; }
.err { color: #b00; }
.ok { color: #080; }
</style>
</head>
<body>
<h1>WiFi Setup</h1>
<p>Enter the network this device should join.</p>
<form id="f">
<label>Network name (SSID)
<input name="ssid" maxlength="32" required>
</label>
<label>Password
<input name="password" type="password" maxlength="64">
</label>
<button type="submit">Connect</button>
</form>
<p id="msg"></p>
<script>
document.getElementById('f').addEventListener('submit', async function(e) {
  e.preventDefault();
  var msg = document.getElementById('msg');
  msg.textContent = 'Connecting...';
  msg.className = '';
  var data = new FormData(this);
  try {
    var resp = await fetch('/connect', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({ssid: data.get('ssid'), password: data.get('password')})
    });
    var body = await resp.json();
    if (resp.ok) {
      msg.textContent = 'Connected. This setup network will now shut down.';
      msg.className = 'ok';
    } else {
      msg.textContent = body.error || 'Connection failed.';
      msg.className = 'err';
    }
  } catch (err) {
    msg.textContent = 'Request failed: ' + err;
    msg.className = 'err';
  }
});
</script>
</body>
</html>
`
