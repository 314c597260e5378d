package templates

import "strings"

// CSS returns the full stylesheet for t: its palette as :root custom
// properties followed by the shared layout rules.
func CSS(t *Template) string {
	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, v := range t.Variables {
		sb.WriteString("  " + v.Name + ": " + v.Value + ";\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString(baseCSS)
	return sb.String()
}

const baseCSS = `* {
  box-sizing: border-box;
}

html, body {
  height: 100%;
  width: 100%;
  margin: 0;
  padding: 0;
  overflow: hidden;
  background: var(--bg-primary);
  color: var(--text-primary);
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
}

.slide {
  position: absolute;
  top: 0;
  left: 0;
  width: 100vw;
  height: 100vh;
  display: flex;
  align-items: center;
  justify-content: center;
  padding: 60px;
  z-index: 1;
  opacity: 0;
  visibility: hidden;
  transition: all 0.6s cubic-bezier(0.25, 0.46, 0.45, 0.94);
}

.slide.active {
  z-index: 10;
  opacity: 1;
  visibility: visible;
}

.slide-title {
  font-size: 3rem;
  font-weight: 700;
  margin: 0;
  color: var(--text-primary);
  line-height: 1.2;
}

.layout-title-centered {
  width: 100%;
  text-align: center;
}

.title-wrapper {
  display: flex;
  flex-direction: column;
  align-items: center;
  gap: 2rem;
}

.title-underline {
  width: 150px;
  height: 6px;
  background: linear-gradient(90deg, var(--accent-1), var(--accent-2));
  border-radius: 3px;
}

.layout-content-left {
  display: flex;
  align-items: center;
  gap: 4rem;
  width: 100%;
}

.content-wrapper {
  flex: 1;
}

.content-list {
  list-style: none;
  padding: 0;
  margin: 2rem 0 0 0;
  display: flex;
  flex-direction: column;
  gap: 1.5rem;
}

.list-item {
  font-size: 1.4rem;
  color: var(--text-secondary);
  padding-left: 2rem;
  position: relative;
}

.list-item::before {
  content: '';
  position: absolute;
  left: 0;
  top: 0.5rem;
  width: 8px;
  height: 8px;
  background: var(--accent-2);
  border-radius: 50%;
}

.accent-shape {
  width: 400px;
  height: 400px;
  background: linear-gradient(135deg, var(--accent-1), var(--accent-3));
  border-radius: 50%;
  opacity: 0.15;
  animation: float 6s ease-in-out infinite;
}

.layout-two-column {
  width: 100%;
}

.columns {
  display: grid;
  grid-template-columns: 1fr 1fr;
  gap: 4rem;
  margin-top: 2rem;
}

.column {
  display: flex;
  flex-direction: column;
  gap: 1.5rem;
}

.column p {
  font-size: 1.2rem;
  line-height: 1.8;
  color: var(--text-secondary);
}

.layout-hero {
  position: relative;
  width: 100%;
  text-align: center;
  z-index: 1;
}

.hero-background {
  position: absolute;
  inset: -60px;
  background: linear-gradient(135deg, var(--accent-1), var(--accent-2));
  z-index: -1;
  opacity: 0.2;
  border-radius: 30px;
}

.hero-title {
  font-size: 4rem;
  background: linear-gradient(90deg, var(--accent-1), var(--accent-2));
  -webkit-background-clip: text;
  -webkit-text-fill-color: transparent;
  background-clip: text;
}

.layout-content-right {
  width: 100%;
  position: relative;
}

.gradient-accent {
  position: absolute;
  top: -100px;
  right: -200px;
  width: 500px;
  height: 500px;
  background: linear-gradient(135deg, var(--accent-1), var(--accent-3));
  border-radius: 50%;
  opacity: 0.1;
  z-index: 0;
}

.content-section {
  position: relative;
  z-index: 1;
}

.content-items {
  display: flex;
  flex-direction: column;
  gap: 1.2rem;
  margin-top: 2rem;
}

.content-item {
  display: flex;
  align-items: center;
  gap: 1.5rem;
  font-size: 1.3rem;
  color: var(--text-secondary);
}

.item-bullet {
  width: 12px;
  height: 12px;
  background: linear-gradient(90deg, var(--accent-1), var(--accent-2));
  border-radius: 50%;
  flex-shrink: 0;
}

.layout-list-decorated {
  width: 100%;
}

.decorated-list {
  list-style: none;
  padding: 0;
  margin: 2rem 0 0 0;
  display: flex;
  flex-direction: column;
  gap: 1.5rem;
}

.decorated-item {
  display: flex;
  align-items: center;
  gap: 1.5rem;
  animation: slideIn 0.6s ease-out forwards;
  opacity: 0;
}

@keyframes slideIn {
  from {
    opacity: 0;
    transform: translateX(-30px);
  }
  to {
    opacity: 1;
    transform: translateX(0);
  }
}

.item-number {
  width: 50px;
  height: 50px;
  background: linear-gradient(135deg, var(--accent-1), var(--accent-2));
  border-radius: 50%;
  display: flex;
  align-items: center;
  justify-content: center;
  font-weight: 700;
  font-size: 1.3rem;
  flex-shrink: 0;
}

.item-text {
  font-size: 1.4rem;
  color: var(--text-secondary);
}

.layout-minimal-title {
  text-align: center;
  width: 100%;
}

.minimal-title {
  font-size: 3.5rem;
  font-weight: 300;
  letter-spacing: 2px;
}

.minimal-line {
  width: 100px;
  height: 2px;
  background: var(--accent-1);
  margin: 2rem auto 0;
}

.layout-content-simple {
  width: 100%;
  max-width: 900px;
}

.content-area {
  margin-top: 2rem;
  display: flex;
  flex-direction: column;
  gap: 1.5rem;
}

.content-text {
  font-size: 1.4rem;
  line-height: 1.8;
  margin: 0;
  font-weight: 300;
}

.layout-corporate-title {
  width: 100%;
}

.corporate-header {
  display: flex;
  align-items: center;
  gap: 2rem;
}

.header-bar {
  width: 8px;
  height: 120px;
  background: linear-gradient(180deg, var(--accent-1), var(--accent-3));
}

.corporate-title {
  font-size: 3.5rem;
  font-weight: 600;
  letter-spacing: 1px;
}

.layout-corporate-content {
  width: 100%;
}

.content-header {
  display: flex;
  align-items: center;
  gap: 1.5rem;
  margin-bottom: 2rem;
}

.header-accent {
  width: 4px;
  height: 50px;
  background: var(--accent-1);
}

.corporate-list {
  display: flex;
  flex-direction: column;
  gap: 1.8rem;
}

.corporate-item {
  display: flex;
  align-items: flex-start;
  gap: 1.5rem;
  font-size: 1.3rem;
  color: var(--text-secondary);
}

.corporate-item .item-bullet {
  color: var(--accent-1);
  font-weight: bold;
  margin-top: 0.2rem;
}

@keyframes float {
  0%, 100% {
    transform: translateY(0px);
  }
  50% {
    transform: translateY(-20px);
  }
}

@media (max-width: 1024px) {
  .slide {
    padding: 40px;
  }

  .slide-title {
    font-size: 2.5rem;
  }

  .columns {
    grid-template-columns: 1fr;
    gap: 2rem;
  }

  .layout-content-left {
    flex-direction: column;
  }

  .accent-shape {
    width: 300px;
    height: 300px;
  }
}
`
