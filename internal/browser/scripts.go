package browser

import (
	"fmt"
	"strconv"
)

// scrollerExpr evaluates to the scroll container or null.
func scrollerExpr() string {
	return fmt.Sprintf("(document.querySelector(%s) || document.querySelector(%s))",
		strconv.Quote(scrollerSelector), strconv.Quote(cardBodySelector))
}

func technologyTitleScript() string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  return el ? el.textContent.trim() : "";
})()`, strconv.Quote(technologySelector))
}

// selectRootScript clicks the first link whose text is title and whose
// href contains scope. Evaluates to true if a link was clicked.
func selectRootScript(title, scope string) string {
	return fmt.Sprintf(`(() => {
  const link = Array.from(document.querySelectorAll("a")).find(
    (a) => a.textContent.trim() === %s && a.href.includes(%s));
  if (!link) return false;
  link.click();
  return true;
})()`, strconv.Quote(title), strconv.Quote(scope))
}

func locateScrollerScript() string {
	return fmt.Sprintf(`(() => {
  const s = %s;
  if (!s) return {found: false};
  return {found: true, className: s.className, scrollHeight: s.scrollHeight, clientHeight: s.clientHeight};
})()`, scrollerExpr())
}

func scrollTopScript() string {
	return fmt.Sprintf(`(() => {
  const s = %s;
  if (s) s.scrollTop = 0;
  return !!s;
})()`, scrollerExpr())
}

// expandScript clicks the toggle of every rendered, collapsed group header
// that is not itself a documentation link. Evaluates to the click count.
func expandScript(docPrefix string) string {
	return fmt.Sprintf(`(() => {
  let count = 0;
  document.querySelectorAll(%s).forEach((item) => {
    if (item.offsetHeight === 0 || !item.querySelector(%s)) return;
    const label = item.querySelector(%s) || item.querySelector(%s) || item;
    if ((label.textContent || "").includes(%s)) return;
    if (!item.classList.contains(%s)) return;
    if (item.querySelector('a[href*=' + JSON.stringify(%s) + ']')) return;
    (item.querySelector(%s) || item).click();
    count++;
  });
  return count;
})()`,
		strconv.Quote(cardSelector),
		strconv.Quote(chevronSelector),
		strconv.Quote(titleSelector), strconv.Quote(headerSelector),
		strconv.Quote(allTechnologies),
		strconv.Quote(groupClass),
		strconv.Quote(docPrefix),
		strconv.Quote(headWrapper),
	)
}

// extractScript reports every rendered card as a rawItem.
func extractScript() string {
	return fmt.Sprintf(`(() => {
  const items = [];
  document.querySelectorAll(%s).forEach((card) => {
    if (card.offsetHeight === 0) return;
    const label = card.querySelector("a") || card.querySelector(%s);
    if (!label) return;
    const title = ((label.querySelector(%s) || label).textContent || "").trim();
    const level = parseInt(card.getAttribute(%s) || "0", 10);
    items.push({
      title: title,
      url: label.tagName === "A" ? label.href : "",
      level: isNaN(level) ? 0 : level,
      isGroup: card.classList.contains(%s),
    });
  });
  return items;
})()`,
		strconv.Quote(cardSelector),
		strconv.Quote(headerSelector),
		strconv.Quote(titleSelector),
		strconv.Quote(nestingAttr),
		strconv.Quote(groupClass),
	)
}

// scrollScript advances the container by fraction of its height and
// reports whether it moved and whether it is within tolerance pixels of
// the end. A missing container reports the bottom.
func scrollScript(fraction float64, tolerance int) string {
	return fmt.Sprintf(`(() => {
  const s = %s;
  if (!s) return {scrolled: false, atBottom: true};
  const prev = s.scrollTop;
  s.scrollTop += s.clientHeight * %s;
  return {
    scrolled: s.scrollTop > prev,
    atBottom: s.scrollTop + s.clientHeight >= s.scrollHeight - %d,
  };
})()`, scrollerExpr(), strconv.FormatFloat(fraction, 'f', -1, 64), tolerance)
}
