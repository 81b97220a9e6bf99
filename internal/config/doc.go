// Package config provides configuration parsing for the navigation
// runtime.
//
// The configuration is stored in aeon.json next to the route manifest.
// This package handles loading, defaulting, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "manifest": "routes.json",
//	  "cache": {
//	    "maxSessions": 50,
//	    "sessionTtl": "5m",
//	    "maxSkeletons": 100,
//	    "skeletonTtl": "30m"
//	  },
//	  "prediction": {
//	    "window": 50,
//	    "prefetchThreshold": 0.3,
//	    "prefetchFanout": 3
//	  },
//	  "speculation": {
//	    "maxPrefetch": 10,
//	    "maxPrerender": 2,
//	    "hoverDelay": "100ms"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 4600
//	  }
//	}
//
// Every field is optional; omitted fields take the defaults shown above.
package config
