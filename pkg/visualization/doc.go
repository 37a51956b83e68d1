// Package visualization renders fitted cubes as wireframes over the images
// they were fitted to, and loads and resizes those images.
package visualization
