package html

import (
	"fmt"

	"github.com/a-h/templ"
)

// BootScript loads the Go runtime shim and starts the WebAssembly front end from wasmDir.
// Config is exposed to the module as window.userdesk before it starts.
func BootScript(wasmDir, apiURL string, pageSize int, searchDelayMS int64) string {
	return fmt.Sprintf(`<script>window.userdesk = {apiURL: %q, pageSize: %d, searchDelayMS: %d};</script>
<script src="%s/wasm_exec.js"></script>
<script>
(function () {
  if (!window.Go || !WebAssembly.instantiateStreaming) {
    document.getElementById("list-area").textContent = "This browser cannot run the admin screen.";
    return;
  }
  var go = new Go();
  WebAssembly.instantiateStreaming(fetch("%s/userdesk.wasm"), go.importObject)
    .then(function (res) { go.run(res.instance); })
    .catch(function (err) {
      document.getElementById("list-area").textContent = "Failed to start: " + err;
    });
})();
</script>`, apiURL, pageSize, searchDelayMS, templ.EscapeString(wasmDir), templ.EscapeString(wasmDir))
}
