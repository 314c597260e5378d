package templates

import (
	"fmt"
	"strings"
)

// navScript shows exactly one slide at a time and binds the arrow keys.
// The slide count is substituted with %d.
const navScript = `(function () {
  window.currentSlide = 1;
  window.totalSlides = %d;
  window.showSlide = function (n) {
    if (n < 1 || n > window.totalSlides) return;
    var slides = document.querySelectorAll('[id^="slide"]');
    for (var i = 0; i < slides.length; i++) {
      var s = slides[i];
      var on = s.id === 'slide' + n;
      s.style.display = on ? 'flex' : 'none';
      s.style.visibility = on ? 'visible' : 'hidden';
      s.style.opacity = on ? '1' : '0';
      s.style.zIndex = on ? '10' : '1';
      if (on) {
        s.classList.add('active');
      } else {
        s.classList.remove('active');
      }
    }
    window.currentSlide = n;
  };
  document.addEventListener('keydown', function (e) {
    if (e.key === 'ArrowRight') {
      window.showSlide(Math.min(window.currentSlide + 1, window.totalSlides));
    } else if (e.key === 'ArrowLeft') {
      window.showSlide(Math.max(window.currentSlide - 1, 1));
    }
  });
  function init() { window.showSlide(1); }
  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', init, { once: true });
  } else {
    init();
  }
})();`

// NavScript returns the navigation controller for a deck of total slides
func NavScript(total int) string {
	return fmt.Sprintf(navScript, total)
}

// InjectNavScript inserts the navigation controller for total slides before
// the last closing body tag of doc.
func InjectNavScript(doc string, total int) (string, error) {
	i := strings.LastIndex(strings.ToLower(doc), "</body>")
	if i < 0 {
		return "", &RenderError{Reason: "missing closing body tag"}
	}
	return doc[:i] + "<script>\n" + NavScript(total) + "\n</script>\n" + doc[i:], nil
}
