package skeleton

// CSS returns the skeleton stylesheet: pulse animation, dark mode, and
// reduced-motion support.
func CSS() string {
	return `.aeon-skeleton {
    background: linear-gradient(
        90deg,
        var(--aeon-skeleton-base, #e5e7eb) 0%,
        var(--aeon-skeleton-highlight, #f3f4f6) 50%,
        var(--aeon-skeleton-base, #e5e7eb) 100%
    );
    background-size: 200% 100%;
    animation: aeon-skeleton-pulse 1.5s ease-in-out infinite;
}

.aeon-skeleton--rect {
    display: block;
}

.aeon-skeleton--circle {
    display: block;
}

.aeon-skeleton--text-line {
    display: block;
    height: 1em;
}

.aeon-skeleton--text-block {
    display: flex;
    flex-direction: column;
}

.aeon-skeleton--line {
    background: inherit;
    background-size: inherit;
    animation: inherit;
    border-radius: 0.125rem;
}

.aeon-skeleton--container {
    background: transparent;
    animation: none;
}

@keyframes aeon-skeleton-pulse {
    0% { background-position: 200% 0; }
    100% { background-position: -200% 0; }
}

@media (prefers-color-scheme: dark) {
    :root {
        --aeon-skeleton-base: #374151;
        --aeon-skeleton-highlight: #4b5563;
    }
}

@media (prefers-reduced-motion: reduce) {
    .aeon-skeleton,
    .aeon-skeleton--line {
        animation: none;
        background-size: 100% 100%;
    }
}
`
}
