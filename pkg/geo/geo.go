// Package geo 提供大圆距离与经纬度范围计算。
package geo

import (
	"math"

	"github.com/rushteam/brewrec/core"
)

// EarthRadiusKm 是 Haversine 公式使用的地球半径（公里）。
const EarthRadiusKm = 6371.0

// kmPerDegree 是每纬度约对应的公里数，用于矩形初筛。
const kmPerDegree = 111.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine 计算两点之间的大圆距离（公里）。
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// 浮点误差可能让 a 略超 1
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance 计算两个坐标之间的距离（公里）。
func Distance(a, b core.Location) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// BoundingBox 返回以 origin 为中心、半径 radiusKm 的经纬度矩形，用于存储层初筛。
// 矩形略大于圆，调用方仍需按实际距离过滤。
//
// 纬度截断到 [-90, 90]；范围触及极点或经度跨度超过半圈时取全部经度；
// 越过 ±180° 的一侧折回另一侧，此时 MinLon > MaxLon。
func BoundingBox(origin core.Location, radiusKm float64) core.BoundingBox {
	latChange := radiusKm / kmPerDegree
	box := core.BoundingBox{
		MinLat: math.Max(-90, origin.Latitude-latChange),
		MaxLat: math.Min(90, origin.Latitude+latChange),
		MinLon: -180,
		MaxLon: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}
	lonChange := math.Abs(radiusKm / (kmPerDegree * math.Cos(toRadians(origin.Latitude))))
	if math.IsNaN(lonChange) || lonChange >= 180 {
		return box
	}
	box.MinLon = origin.Longitude - lonChange
	box.MaxLon = origin.Longitude + lonChange
	if box.MinLon < -180 {
		box.MinLon += 360
	}
	if box.MaxLon > 180 {
		box.MaxLon -= 360
	}
	return box
}
